package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("MAX(year)").
		From("table_rows").
		Where(Eq("table_name", "games")).
		OrderBy("year").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT MAX(year) FROM table_rows WHERE table_name = $1 ORDER BY year LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "games" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("table_rows").
		Columns("table_name", "year").
		Values("games", 2020).
		Values("games", 2021).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO table_rows (table_name, year) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != 2021 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("table_rows").
		Where(Eq("table_name", "games"), Eq("year", 2021)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM table_rows WHERE table_name = $1 AND year = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != 2021 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := DeleteFrom("table_rows").ToSQL(); err == nil {
		t.Fatalf("expected error for unscoped delete")
	}
}

type rowModel struct {
	Table   string `db:"table_name"`
	Year    int    `db:"year"`
	Ignored string `db:"-"`
	hidden  int
}

func TestInsertModels(t *testing.T) {
	query, args, err := InsertModels("table_rows", []rowModel{
		{Table: "games", Year: 2020},
		{Table: "games", Year: 2021, hidden: 1},
	}, "")
	if err != nil {
		t.Fatalf("build insert models: %v", err)
	}
	wantQuery := "INSERT INTO table_rows (table_name, year) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
