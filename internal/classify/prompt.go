package classify

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/guidance"
	"github.com/sells-group/prospect-cli/internal/model"
)

const (
	maxBuyerTitles      = 5
	maxCharacteristics  = 5
	defaultAvoidEntry   = "Competitors selling similar products/services"
	businessTypeChoices = "developer | expanding_company | oem | brand | manufacturer | retailer | software_company | service_provider | other"
)

// BuildPrompt renders the classification request for one candidate. Only
// the first excerpt runes of pageText are included.
func BuildPrompt(domain, pageText string, icp model.ICP, excerpt int) string {
	var b strings.Builder

	b.WriteString("You qualify B2B sales prospects. Decide whether the candidate company below would BUY from the seller.\n\n")

	b.WriteString("=== SELLER ===\n")
	fmt.Fprintf(&b, "Business type: %s\n", sellerType(icp))
	fmt.Fprintf(&b, "Offering: %s\n\n", icp.WhatTheySell)

	b.WriteString("=== IDEAL CUSTOMER ===\n")
	fmt.Fprintf(&b, "Target industries: %s\n", icp.CustomerIndustry)
	fmt.Fprintf(&b, "Buyer titles: %s\n", strings.Join(head(icp.TargetBuyers, maxBuyerTitles), ", "))
	fmt.Fprintf(&b, "Characteristics: %s\n", strings.Join(head(icp.IdealCustomerCharacteristics, maxCharacteristics), ", "))
	if c := GeoConstraint(icp.ServiceableGeography); c != "" {
		b.WriteString(c + "\n")
	}

	b.WriteString("\n=== REJECT THESE COMPANIES ===\n")
	avoid := icp.AvoidCompanyTypes
	if len(avoid) == 0 {
		avoid = []string{defaultAvoidEntry}
	}
	for _, a := range avoid {
		b.WriteString("- " + a + "\n")
	}

	b.WriteString("\n")
	b.WriteString(guidance.For(icp.SellerBusinessType, icp.WhatTheySell))

	b.WriteString("\n=== CANDIDATE ===\n")
	fmt.Fprintf(&b, "Domain: %s\n", domain)
	b.WriteString("Website content (excerpt):\n")
	b.WriteString(truncate(pageText, excerpt))
	b.WriteString("\n\n")

	b.WriteString(`=== TASK ===
1. Identify what the company actually does and whether it is a buyer or a vendor.
2. Competitor check: a company selling the same or a similar offering is a competitor and must be rejected, as must any company matching the reject list.
3. Need check: does it have an active need now? For services, is it building or expanding rather than only operating? For software, does it have the problem the product solves?
4. Geography check: does it operate where the seller can deliver?

=== OUTPUT ===
Reply with this JSON object only:
{
  "is_qualified_prospect": true or false,
  "company_name": "official company name from the website",
  "what_they_do": "one sentence on their actual business",
  "primary_business_type": "` + businessTypeChoices + `",
  "is_competitor": true or false,
  "has_active_need": true or false,
  "matches_target_industry": true or false,
  "matches_geography": true or false,
  "would_buy_reasoning": "one sentence on why they would or would not buy",
  "confidence": 0-100,
  "rejection_reason": "specific reason, only when not qualified"
}`)
	return b.String()
}

// GeoConstraint returns the geography requirement line, or "" when the
// scope does not restrict location.
func GeoConstraint(geo model.Geography) string {
	var places []string
	switch geo.Scope {
	case model.GeoRegional:
		places = geo.StatesOrRegions
	case model.GeoNational:
		places = geo.Countries
	}
	if len(places) == 0 {
		return ""
	}
	return "GEOGRAPHIC REQUIREMENT: Company must operate in: " + strings.Join(places, ", ")
}

func sellerType(icp model.ICP) model.SellerBusinessType {
	if icp.SellerBusinessType == "" {
		return model.SellerUnknown
	}
	return icp.SellerBusinessType
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
