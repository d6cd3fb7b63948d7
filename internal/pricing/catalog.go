// Package pricing loads the subscription plan catalog and serves it over
// HTTP. Plan codes double as their request quota ("10" grants 10 requests a
// month); the catalog file is the single source of truth for labels and
// prices shown to buyers.
package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is one purchasable subscription tier.
type Plan struct {
	Code            string `yaml:"code" json:"code"`
	Quota           int    `yaml:"quota" json:"quota"`
	PriceRub        int    `yaml:"price_rub" json:"priceRub"`
	Label           string `yaml:"label" json:"label"`
	Description     string `yaml:"description" json:"description"`
	PricePerRequest int    `yaml:"price_per_request" json:"pricePerRequest"`
	Brief           string `yaml:"brief" json:"brief"`
	Recommended     bool   `yaml:"recommended" json:"recommended"`
	Benefits        string `yaml:"benefits" json:"benefits"`
}

// OneTime is the single-request purchase option.
type OneTime struct {
	Count           int    `yaml:"count" json:"count"`
	PriceRub        int    `yaml:"price_rub" json:"priceRub"`
	Label           string `yaml:"label" json:"label"`
	Description     string `yaml:"description" json:"description"`
	PricePerRequest int    `yaml:"price_per_request" json:"pricePerRequest"`
	Brief           string `yaml:"brief" json:"brief"`
	Benefits        string `yaml:"benefits" json:"benefits"`
}

// Catalog is the full plan table.
type Catalog struct {
	FreeRequests int     `yaml:"free_requests" json:"freeRequests"`
	Plans        []Plan  `yaml:"plans" json:"plans"`
	OneTime      OneTime `yaml:"one_time" json:"oneTime"`

	byCode map[string]Plan
}

// Load reads and validates the plan catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse pricing catalog: %w", err)
	}

	if len(catalog.Plans) == 0 {
		return nil, fmt.Errorf("pricing catalog %s: no plans defined", path)
	}
	if catalog.FreeRequests < 0 {
		return nil, fmt.Errorf("pricing catalog %s: free_requests must not be negative", path)
	}

	catalog.byCode = make(map[string]Plan, len(catalog.Plans))
	for _, plan := range catalog.Plans {
		if plan.Code == "" {
			return nil, fmt.Errorf("pricing catalog %s: plan without a code", path)
		}
		if plan.Quota < 1 {
			return nil, fmt.Errorf("pricing catalog %s: plan %s has no quota", path, plan.Code)
		}
		if plan.PriceRub < 1 {
			return nil, fmt.Errorf("pricing catalog %s: plan %s has no price", path, plan.Code)
		}
		if _, exists := catalog.byCode[plan.Code]; exists {
			return nil, fmt.Errorf("pricing catalog %s: duplicate plan code %s", path, plan.Code)
		}
		catalog.byCode[plan.Code] = plan
	}

	return &catalog, nil
}

// Plan returns the plan with the given code.
func (c *Catalog) Plan(code string) (Plan, bool) {
	plan, ok := c.byCode[code]
	return plan, ok
}

// QuotaFor returns the monthly request quota for a plan code, 0 when the
// code is unknown.
func (c *Catalog) QuotaFor(code string) int {
	return c.byCode[code].Quota
}

// Recommended returns the plan marked as the suggested choice.
func (c *Catalog) Recommended() (Plan, bool) {
	for _, plan := range c.Plans {
		if plan.Recommended {
			return plan, true
		}
	}
	return Plan{}, false
}
