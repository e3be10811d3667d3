// Package icp loads ideal customer profiles, fills defensive defaults, and
// reports data-quality problems that weaken discovery.
package icp

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Load reads an ICP from a YAML or JSON file and normalizes it.
func Load(path string) (model.ICP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ICP{}, eris.Wrapf(err, "icp: read %s", path)
	}
	icp, err := Parse(data)
	if err != nil {
		return model.ICP{}, eris.Wrapf(err, "icp: parse %s", path)
	}
	return icp, nil
}

// Parse decodes a YAML or JSON document into a normalized ICP. List fields
// given as a single string become one-element lists.
func Parse(data []byte) (model.ICP, error) {
	var raw rawICP
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.ICP{}, eris.Wrap(err, "icp: decode")
	}

	icp := model.ICP{
		SellerBusinessType:           model.SellerBusinessType(strings.TrimSpace(raw.SellerBusinessType)),
		WhatTheySell:                 raw.WhatTheySell,
		CustomerIndustry:             strings.Join(raw.CustomerIndustry, ", "),
		CustomerCompanySize:          raw.CustomerCompanySize,
		TargetBuyers:                 raw.TargetBuyers,
		PainPointsSolved:             raw.PainPointsSolved,
		IdealCustomerCharacteristics: raw.IdealCustomerCharacteristics,
		AvoidCompanyTypes:            raw.AvoidCompanyTypes,
		ServiceableGeography:         decodeGeography(&raw.ServiceableGeography),
	}
	return Normalize(icp), nil
}

type rawICP struct {
	SellerBusinessType           string     `yaml:"seller_business_type"`
	WhatTheySell                 string     `yaml:"what_they_sell"`
	CustomerIndustry             stringList `yaml:"customer_industry"`
	CustomerCompanySize          string     `yaml:"customer_company_size"`
	TargetBuyers                 stringList `yaml:"target_buyers"`
	PainPointsSolved             stringList `yaml:"pain_points_solved"`
	IdealCustomerCharacteristics stringList `yaml:"ideal_customer_characteristics"`
	AvoidCompanyTypes            stringList `yaml:"avoid_company_types"`
	ServiceableGeography         yaml.Node  `yaml:"serviceable_geography"`
}

type rawGeography struct {
	Scope           string     `yaml:"scope"`
	Countries       stringList `yaml:"countries"`
	StatesOrRegions stringList `yaml:"states_or_regions"`
	Notes           string     `yaml:"notes"`
}

// stringList accepts a sequence of scalars or a single scalar. Other shapes
// decode as empty.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(n.Value); v != "" && n.ShortTag() != "!!null" {
			*l = stringList{v}
		}
	case yaml.SequenceNode:
		out := make(stringList, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				continue
			}
			if v := strings.TrimSpace(c.Value); v != "" {
				out = append(out, v)
			}
		}
		*l = out
	}
	return nil
}

func decodeGeography(n *yaml.Node) model.Geography {
	switch n.Kind {
	case 0:
		return model.Geography{Scope: model.GeoUnclear, Notes: "No geographic information detected"}
	case yaml.MappingNode:
		var rg rawGeography
		if err := n.Decode(&rg); err == nil {
			return model.Geography{
				Scope:           model.GeoScope(strings.ToLower(strings.TrimSpace(rg.Scope))),
				Countries:       rg.Countries,
				StatesOrRegions: rg.StatesOrRegions,
				Notes:           rg.Notes,
			}
		}
	}
	return model.Geography{Scope: model.GeoUnclear, Notes: "Invalid format"}
}
