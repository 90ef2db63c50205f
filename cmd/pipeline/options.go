package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cfb-predictor/internal/usecase"
	"github.com/spf13/cobra"
)

var validate = validator.New()

type options struct {
	Store        string `validate:"omitempty,oneof=postgres memory"`
	StartYear    int    `validate:"omitempty,gte=1869"`
	EndYear      int    `validate:"omitempty,gte=1869"`
	UseWatermark bool
	Tables       []string `validate:"omitempty,dive,required"`
	SkipCollect  bool
	Stage        string `validate:"omitempty,oneof=collect normalize transform clean features run"`
	Limit        int    `validate:"gte=0"`
}

func (o *options) validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	if o.StartYear > 0 && o.EndYear > 0 && o.StartYear > o.EndYear {
		return fmt.Errorf("%w: start-year %d is after end-year %d", usecase.ErrInvalidInput, o.StartYear, o.EndYear)
	}
	return nil
}

// collectInput leaves the watermark to config unless the flag was set.
func (o *options) collectInput(cmd *cobra.Command) usecase.CollectInput {
	input := usecase.CollectInput{
		StartYear: o.StartYear,
		EndYear:   o.EndYear,
		Tables:    o.Tables,
	}
	if flag := cmd.Flags().Lookup("use-watermark"); flag != nil && flag.Changed {
		useWatermark := o.UseWatermark
		input.UseWatermark = &useWatermark
	}
	return input
}
