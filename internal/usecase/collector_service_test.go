package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
	"github.com/riskibarqy/cfb-predictor/internal/infrastructure/repository/memory"
	rawdatamock "github.com/riskibarqy/cfb-predictor/internal/mocks/domain/rawdata"
	usecasemock "github.com/riskibarqy/cfb-predictor/internal/mocks/usecase"
	"github.com/stretchr/testify/mock"
)

func rawItems(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out
}

func filtersWith(kv ...string) any {
	return mock.MatchedBy(func(filters map[string]string) bool {
		for i := 0; i+1 < len(kv); i += 2 {
			if filters[kv[i]] != kv[i+1] {
				return false
			}
		}
		return true
	})
}

var gamesEndpoint = source.Endpoint{Table: source.TableGames, Path: "/games", Scope: source.ScopeYearConference, BySeasonType: true}

func TestCollectorService_Collect_FansOutConferencesAndSeasonTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTableRepository()
	provider := usecasemock.NewDataProvider(t)

	for _, conf := range []string{"SEC", "ACC"} {
		for _, st := range []string{"regular", "postseason"} {
			provider.
				On("Fetch", mock.Anything, gamesEndpoint, 2021, filtersWith("conference", conf, "seasonType", st)).
				Return(rawItems(fmt.Sprintf(`{"id":1,"season":2021,"homeTeam":%q}`, conf+st)), nil).
				Once()
		}
	}

	svc := NewCollectorService(repo, provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{
		Conferences: []string{"SEC", "ACC"},
		SeasonTypes: []string{"regular", "postseason"},
	}, nil)

	result, err := svc.Collect(ctx, CollectInput{StartYear: 2021, EndYear: 2021})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Units != 4 || result.FailedUnits != 0 || result.Records != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, err := repo.Read(ctx, source.TableGames)
	if err != nil {
		t.Fatalf("read games: %v", err)
	}
	if len(stored) != 4 {
		t.Fatalf("expected 4 stored games, got=%d", len(stored))
	}
	if stored[0].Key != "games:2021:SEC/regular:0" {
		t.Fatalf("unexpected record key: %s", stored[0].Key)
	}
}

func TestCollectorService_Collect_SkipsFailedUnitAndKeepsGoing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTableRepository()
	provider := usecasemock.NewDataProvider(t)

	provider.
		On("Fetch", mock.Anything, gamesEndpoint, 2020, filtersWith("conference", "SEC")).
		Return(nil, errors.New("upstream status 500")).
		Once()
	provider.
		On("Fetch", mock.Anything, gamesEndpoint, 2020, filtersWith("conference", "ACC")).
		Return(rawItems(`{"id":2}`), nil).
		Once()

	svc := NewCollectorService(repo, provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{
		Conferences: []string{"SEC", "ACC"},
	}, nil)

	result, err := svc.Collect(ctx, CollectInput{StartYear: 2020, EndYear: 2020})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.FailedUnits != 1 || result.Records != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCollectorService_Collect_KeepsStoredRowsWhenEveryUnitFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTableRepository()
	previous := rawdata.RecordFromJSON(source.TableGames, 2019, "old", []byte(`{"id":9}`))
	if err := repo.Write(ctx, rawdata.Write{Table: source.TableGames, Mode: rawdata.ModeReplaceYear, Year: 2019, Records: []rawdata.Record{previous}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	provider := usecasemock.NewDataProvider(t)
	provider.
		On("Fetch", mock.Anything, gamesEndpoint, 2019, mock.Anything).
		Return(nil, errors.New("timeout")).
		Once()

	svc := NewCollectorService(repo, provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{Conferences: []string{"SEC"}}, nil)
	result, err := svc.Collect(ctx, CollectInput{StartYear: 2019, EndYear: 2019})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(result.Tables) != 1 || len(result.Tables[0].KeptYears) != 1 {
		t.Fatalf("expected kept year, got=%+v", result.Tables)
	}

	stored, _ := repo.Read(ctx, source.TableGames)
	if len(stored) != 1 || stored[0].Key != "old" {
		t.Fatalf("previous rows must survive, got=%+v", stored)
	}
}

func TestCollectorService_Collect_DependencyFailureIsFatal(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewDataProvider(t)
	provider.
		On("Fetch", mock.Anything, gamesEndpoint, 2021, mock.Anything).
		Return(nil, fmt.Errorf("%w: circuit open", ErrDependencyUnavailable)).
		Once()

	svc := NewCollectorService(memory.NewTableRepository(), provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{
		Conferences: []string{"SEC", "ACC"},
	}, nil)

	_, err := svc.Collect(context.Background(), CollectInput{StartYear: 2021, EndYear: 2021})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got=%v", err)
	}
}

func TestCollectorService_Collect_ResumesFromInclusiveWatermark(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := rawdatamock.NewRepository(t)
	provider := usecasemock.NewDataProvider(t)

	repo.On("MaxYear", mock.Anything, source.TableGames).Return(2020, true, nil).Once()
	for _, year := range []int{2020, 2021} {
		year := year
		provider.
			On("Fetch", mock.Anything, gamesEndpoint, year, mock.Anything).
			Return(rawItems(`{"id":1}`), nil).
			Once()
		repo.
			On("Write", mock.Anything, mock.MatchedBy(func(w rawdata.Write) bool {
				return w.Year == year && w.Mode == rawdata.ModeReplaceYear && len(w.Records) == 1
			})).
			Return(nil).
			Once()
	}

	svc := NewCollectorService(repo, provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{
		Conferences:  []string{"SEC"},
		UseWatermark: true,
	}, nil)

	result, err := svc.Collect(ctx, CollectInput{StartYear: 2004, EndYear: 2021})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := result.Tables[0].Years; len(got) != 2 || got[0] != 2020 || got[1] != 2021 {
		t.Fatalf("unexpected years: %v", got)
	}
}

func TestCollectorService_Collect_WatermarkOverrideAndStoreFailure(t *testing.T) {
	t.Parallel()

	repo := rawdatamock.NewRepository(t)
	repo.On("MaxYear", mock.Anything, source.TableGames).Return(0, false, errors.New("connection refused")).Once()

	svc := NewCollectorService(repo, usecasemock.NewDataProvider(t), []source.Endpoint{gamesEndpoint}, CollectorConfig{
		Conferences:  []string{"SEC"},
		UseWatermark: true,
	}, nil)

	_, err := svc.Collect(context.Background(), CollectInput{StartYear: 2020, EndYear: 2020})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got=%v", err)
	}
}

func TestCollectorService_Collect_SkipsYearsBeforeCoverage(t *testing.T) {
	t.Parallel()

	talent := source.Endpoint{Table: source.TableTalent, Path: "/talent", Scope: source.ScopeYear, CoverageStart: 2015}
	provider := usecasemock.NewDataProvider(t)
	provider.
		On("Fetch", mock.Anything, talent, 2015, mock.Anything).
		Return(rawItems(`{"year":2015,"team":"A","talent":1}`), nil).
		Once()

	svc := NewCollectorService(memory.NewTableRepository(), provider, []source.Endpoint{talent}, CollectorConfig{}, nil)
	result, err := svc.Collect(context.Background(), CollectInput{StartYear: 2013, EndYear: 2015})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := result.Tables[0].SkippedYears; len(got) != 2 {
		t.Fatalf("expected 2 skipped years, got=%v", got)
	}
}

func TestCollectorService_Collect_TeamScopeUsesStoredGames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTableRepository()
	games, err := rawdata.Encode(source.TableGames, []source.Game{
		{ID: 1, Season: 2022, HomeTeam: "Alabama", HomeConference: strPtr("SEC"), AwayTeam: "Utah State", AwayConference: strPtr("Mountain West")},
		{ID: 2, Season: 2022, HomeTeam: "Duke", HomeConference: strPtr("ACC"), AwayTeam: "Alabama", AwayConference: strPtr("SEC")},
	}, func(g source.Game) int { return g.Season }, nil)
	if err != nil {
		t.Fatalf("encode games: %v", err)
	}
	if err := repo.Write(ctx, rawdata.Write{Table: source.TableGames, Mode: rawdata.ModeReplaceYear, Year: 2022, Records: games}); err != nil {
		t.Fatalf("seed games: %v", err)
	}

	advanced := source.Endpoint{
		Table:  source.TableAdvancedTeamGameStats,
		Path:   "/stats/game/advanced",
		Scope:  source.ScopeYearTeam,
		Params: map[string]string{"excludeGarbageTime": "true"},
	}
	provider := usecasemock.NewDataProvider(t)
	for _, team := range []string{"Alabama", "Duke"} {
		provider.
			On("Fetch", mock.Anything, advanced, 2022, filtersWith("team", team, "excludeGarbageTime", "true")).
			Return(rawItems(`{"gameId":1}`), nil).
			Once()
	}

	svc := NewCollectorService(repo, provider, []source.Endpoint{advanced}, CollectorConfig{Conferences: []string{"SEC", "ACC"}}, nil)
	result, err := svc.Collect(ctx, CollectInput{StartYear: 2022, EndYear: 2022})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Units != 2 {
		t.Fatalf("expected one unit per in-scope team, got=%d", result.Units)
	}
}

func TestCollectorService_Collect_RerunDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTableRepository()
	provider := usecasemock.NewDataProvider(t)
	provider.
		On("Fetch", mock.Anything, gamesEndpoint, 2021, mock.Anything).
		Return(rawItems(`{"id":1}`, `{"id":2}`), nil).
		Twice()

	svc := NewCollectorService(repo, provider, []source.Endpoint{gamesEndpoint}, CollectorConfig{Conferences: []string{"SEC"}}, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Collect(ctx, CollectInput{StartYear: 2021, EndYear: 2021}); err != nil {
			t.Fatalf("collect run %d: %v", i, err)
		}
	}

	stored, _ := repo.Read(ctx, source.TableGames)
	if len(stored) != 2 {
		t.Fatalf("expected 2 rows after rerun, got=%d", len(stored))
	}
}

func TestCollectorService_Collect_RejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := NewCollectorService(memory.NewTableRepository(), usecasemock.NewDataProvider(t), nil, CollectorConfig{}, nil)

	if _, err := svc.Collect(context.Background(), CollectInput{StartYear: 2022, EndYear: 2021}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed range, got=%v", err)
	}
	if _, err := svc.Collect(context.Background(), CollectInput{StartYear: 2021, EndYear: 2021, Tables: []string{"nope"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown table, got=%v", err)
	}
}

func strPtr(v string) *string { return &v }
