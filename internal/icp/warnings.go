package icp

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

var vagueIndustries = map[string]bool{
	"software":   true,
	"technology": true,
	"services":   true,
	"business":   true,
	"companies":  true,
}

var (
	activeNeedTerms = []string{"developing", "expanding", "building", "growing", "opening", "relocating"}
	passiveTerms    = []string{"manufacturing", "industrial facilities", "existing facilities"}
	competitorTerms = []string{"competitor", "similar service", "same type"}
	problemTerms    = []string{"need", "problem", "challenge", "pain", "struggle"}
)

// Warnings lists data-quality problems in icp. None of them block a run.
func Warnings(icp model.ICP) []string {
	var w []string
	industry := strings.ToLower(strings.TrimSpace(icp.CustomerIndustry))

	if len(icp.AvoidCompanyTypes) == 0 {
		w = append(w, "avoid_company_types is empty; competitors and wrong-fit companies should always be excluded")
	}
	if vagueIndustries[industry] {
		w = append(w, fmt.Sprintf("customer_industry %q is too vague to target buyers", icp.CustomerIndustry))
	}
	if len(icp.TargetBuyers) == 0 {
		w = append(w, "no target buyers defined")
	}
	if len(icp.IdealCustomerCharacteristics) == 0 {
		w = append(w, "no ideal customer characteristics defined; the profile may be too generic")
	}
	if len(icp.PainPointsSolved) == 0 {
		w = append(w, "no pain points defined")
	}

	switch icp.SellerBusinessType {
	case model.SellerPhysicalService:
		if containsAny(industry, passiveTerms) && !containsAny(industry, activeNeedTerms) {
			w = append(w, "physical service sellers should target companies commissioning new work, not companies that merely have facilities")
		}
	case model.SellerEngineeringServices:
		if !containsAny(strings.ToLower(strings.Join(icp.AvoidCompanyTypes, " ")), competitorTerms) {
			w = append(w, "engineering services profiles should list competitors in avoid_company_types")
		}
	case model.SellerSoftwareSaaS:
		if !containsAny(strings.ToLower(strings.Join(icp.IdealCustomerCharacteristics, " ")), problemTerms) {
			w = append(w, "software profiles should describe the problem customers have in ideal_customer_characteristics")
		}
	}

	if icp.ServiceableGeography.Scope == model.GeoRegional && len(icp.ServiceableGeography.StatesOrRegions) == 0 {
		w = append(w, "geography scope is regional but no regions are listed")
	}
	return w
}

// LogWarnings logs every warning for icp and returns how many there were.
func LogWarnings(icp model.ICP) int {
	log := zap.L().With(zap.String("phase", "icp"))
	warnings := Warnings(icp)
	for _, w := range warnings {
		log.Warn("icp data quality", zap.String("warning", w))
	}
	return len(warnings)
}

// GeographicSummary describes the serviceable area in one line.
func GeographicSummary(icp model.ICP) string {
	geo := icp.ServiceableGeography
	switch geo.Scope {
	case model.GeoGlobal:
		return "Global service area, no geographic restrictions"
	case model.GeoNational:
		if len(geo.Countries) > 0 {
			return "National service in: " + strings.Join(geo.Countries, ", ")
		}
		return "National service area"
	case model.GeoRegional, model.GeoCustom:
		var parts []string
		if len(geo.Countries) > 0 {
			parts = append(parts, "Countries: "+strings.Join(geo.Countries, ", "))
		}
		if n := len(geo.StatesOrRegions); n > 5 {
			parts = append(parts, fmt.Sprintf("Regions: %s and %d more", strings.Join(geo.StatesOrRegions[:5], ", "), n-5))
		} else if n > 0 {
			parts = append(parts, "Regions: "+strings.Join(geo.StatesOrRegions, ", "))
		}
		label := "Regional"
		if geo.Scope == model.GeoCustom {
			label = "Custom"
		}
		if len(parts) == 0 {
			return label + " service area (specific regions not identified)"
		}
		return label + " service - " + strings.Join(parts, " | ")
	}
	return "Geographic scope unclear, no filtering applied"
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
