package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"stock-catalog/models"
)

func paramError(name, value string) error {
	return fmt.Errorf("invalid %s %q: %w", name, value, models.ErrInvalidArgument)
}

func decimalParam(v url.Values, name string) (*decimal.Decimal, error) {
	s := v.Get(name)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, paramError(name, s)
	}
	return &d, nil
}

func int64Param(v url.Values, name string) (*int64, error) {
	s := v.Get(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, paramError(name, s)
	}
	return &n, nil
}
