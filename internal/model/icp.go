package model

import "strings"

// SellerBusinessType classifies how the seller makes money. It selects the
// classification guidance used to tell buyers from competitors.
type SellerBusinessType string

const (
	SellerPhysicalService     SellerBusinessType = "physical_service"
	SellerEngineeringServices SellerBusinessType = "engineering_services"
	SellerSoftwareSaaS        SellerBusinessType = "software_saas"
	SellerB2BSupplier         SellerBusinessType = "b2b_supplier"
	SellerConsulting          SellerBusinessType = "consulting"
	SellerUnknown             SellerBusinessType = "unknown"
)

// SellerBusinessTypes returns every known seller type, unknown last.
func SellerBusinessTypes() []SellerBusinessType {
	return []SellerBusinessType{
		SellerPhysicalService,
		SellerEngineeringServices,
		SellerSoftwareSaaS,
		SellerB2BSupplier,
		SellerConsulting,
		SellerUnknown,
	}
}

// Valid reports whether t is one of the known seller types.
func (t SellerBusinessType) Valid() bool {
	for _, known := range SellerBusinessTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// GeoScope is the breadth of the seller's serviceable area.
type GeoScope string

const (
	GeoRegional GeoScope = "regional"
	GeoNational GeoScope = "national"
	GeoGlobal   GeoScope = "global"
	GeoUnclear  GeoScope = "unclear"
	GeoCustom   GeoScope = "custom"
)

// Valid reports whether s is a known scope.
func (s GeoScope) Valid() bool {
	switch s {
	case GeoRegional, GeoNational, GeoGlobal, GeoUnclear, GeoCustom:
		return true
	}
	return false
}

// Geography describes where the seller can deliver.
type Geography struct {
	Scope           GeoScope `json:"scope" yaml:"scope"`
	Countries       []string `json:"countries" yaml:"countries"`
	StatesOrRegions []string `json:"states_or_regions" yaml:"states_or_regions"`
	Notes           string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ICP is an ideal customer profile. It is read-only for the duration of a
// discovery run.
type ICP struct {
	SellerBusinessType           SellerBusinessType `json:"seller_business_type" yaml:"seller_business_type"`
	WhatTheySell                 string             `json:"what_they_sell" yaml:"what_they_sell"`
	CustomerIndustry             string             `json:"customer_industry" yaml:"customer_industry"`
	CustomerCompanySize          string             `json:"customer_company_size,omitempty" yaml:"customer_company_size,omitempty"`
	TargetBuyers                 []string           `json:"target_buyers" yaml:"target_buyers"`
	PainPointsSolved             []string           `json:"pain_points_solved,omitempty" yaml:"pain_points_solved,omitempty"`
	IdealCustomerCharacteristics []string           `json:"ideal_customer_characteristics" yaml:"ideal_customer_characteristics"`
	AvoidCompanyTypes            []string           `json:"avoid_company_types" yaml:"avoid_company_types"`
	ServiceableGeography         Geography          `json:"serviceable_geography" yaml:"serviceable_geography"`
}

// Industries splits CustomerIndustry on commas into trimmed, non-empty terms
// in their original order.
func (icp ICP) Industries() []string {
	var out []string
	for _, part := range strings.Split(icp.CustomerIndustry, ",") {
		if term := strings.TrimSpace(part); term != "" {
			out = append(out, term)
		}
	}
	return out
}
