package icp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

const constructionYAML = `
seller_business_type: physical_service
what_they_sell: Commercial construction and tenant build-outs
customer_industry: commercial real estate, retail chains
target_buyers:
  - VP Real Estate
  - Director of Construction
ideal_customer_characteristics:
  - Opening new locations
avoid_company_types:
  - other contractors
pain_points_solved: Slow build-outs
serviceable_geography:
  scope: Regional
  countries: [USA]
  states_or_regions: [Texas, Oklahoma]
`

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(constructionYAML), 0o644))

	icp, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.SellerPhysicalService, icp.SellerBusinessType)
	assert.Equal(t, "commercial real estate, retail chains", icp.CustomerIndustry)
	assert.Equal(t, []string{"commercial real estate", "retail chains"}, icp.Industries())
	assert.Equal(t, []string{"VP Real Estate", "Director of Construction"}, icp.TargetBuyers)
	assert.Equal(t, []string{"Slow build-outs"}, icp.PainPointsSolved)
	assert.Equal(t, model.GeoRegional, icp.ServiceableGeography.Scope)
	assert.Equal(t, []string{"Texas", "Oklahoma"}, icp.ServiceableGeography.StatesOrRegions)
}

func TestParse_JSON(t *testing.T) {
	icp, err := Parse([]byte(`{
		"seller_business_type": "software_saas",
		"what_they_sell": "Fleet telematics",
		"customer_industry": ["trucking", "last-mile delivery"],
		"target_buyers": "Fleet Manager",
		"avoid_company_types": [],
		"serviceable_geography": {"scope": "national"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, model.SellerSoftwareSaaS, icp.SellerBusinessType)
	assert.Equal(t, "trucking, last-mile delivery", icp.CustomerIndustry)
	assert.Equal(t, []string{"Fleet Manager"}, icp.TargetBuyers)
	assert.NotNil(t, icp.AvoidCompanyTypes)
	assert.Empty(t, icp.AvoidCompanyTypes)
	assert.Equal(t, model.GeoNational, icp.ServiceableGeography.Scope)
}

func TestParse_Defaults(t *testing.T) {
	icp, err := Parse([]byte(`what_they_sell: widgets`))
	require.NoError(t, err)

	assert.Equal(t, model.SellerUnknown, icp.SellerBusinessType)
	assert.Equal(t, model.GeoUnclear, icp.ServiceableGeography.Scope)
	assert.Equal(t, "No geographic information detected", icp.ServiceableGeography.Notes)
	assert.NotNil(t, icp.TargetBuyers)
	assert.NotNil(t, icp.IdealCustomerCharacteristics)
}

func TestParse_InvalidShapes(t *testing.T) {
	icp, err := Parse([]byte(`
seller_business_type: reseller
target_buyers: {name: CEO}
serviceable_geography: everywhere
`))
	require.NoError(t, err)

	assert.Equal(t, model.SellerUnknown, icp.SellerBusinessType)
	assert.Empty(t, icp.TargetBuyers)
	assert.Equal(t, model.GeoUnclear, icp.ServiceableGeography.Scope)
	assert.Equal(t, "Invalid format", icp.ServiceableGeography.Notes)
}

func TestParse_InvalidScope(t *testing.T) {
	icp, err := Parse([]byte("serviceable_geography:\n  scope: continental\n"))
	require.NoError(t, err)
	assert.Equal(t, model.GeoUnclear, icp.ServiceableGeography.Scope)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("what_they_sell: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "icp: decode")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "icp: read")
}

func TestNormalize_DoesNotMutate(t *testing.T) {
	in := model.ICP{TargetBuyers: []string{" CFO ", ""}}
	out := Normalize(in)
	assert.Equal(t, []string{"CFO"}, out.TargetBuyers)
	assert.Equal(t, []string{" CFO ", ""}, in.TargetBuyers)
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name string
		icp  model.ICP
		want []string
	}{
		{
			name: "empty profile",
			icp:  Normalize(model.ICP{CustomerIndustry: "Technology"}),
			want: []string{"avoid_company_types is empty", "too vague", "no target buyers", "no ideal customer characteristics", "no pain points"},
		},
		{
			name: "passive physical service",
			icp: model.ICP{
				SellerBusinessType: model.SellerPhysicalService,
				CustomerIndustry:   "manufacturing plants",
			},
			want: []string{"commissioning new work"},
		},
		{
			name: "engineering without competitors",
			icp: model.ICP{
				SellerBusinessType: model.SellerEngineeringServices,
				AvoidCompanyTypes:  []string{"universities"},
			},
			want: []string{"should list competitors"},
		},
		{
			name: "saas without problems",
			icp: model.ICP{
				SellerBusinessType:           model.SellerSoftwareSaaS,
				IdealCustomerCharacteristics: []string{"mid-size"},
			},
			want: []string{"describe the problem"},
		},
		{
			name: "regional without regions",
			icp:  model.ICP{ServiceableGeography: model.Geography{Scope: model.GeoRegional}},
			want: []string{"no regions are listed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Warnings(tt.icp)
			for _, want := range tt.want {
				found := false
				for _, w := range got {
					if strings.Contains(w, want) {
						found = true
						break
					}
				}
				assert.True(t, found, "missing warning containing %q in %v", want, got)
			}
		})
	}
}

func TestWarnings_CleanProfile(t *testing.T) {
	icp, err := Parse([]byte(constructionYAML))
	require.NoError(t, err)
	assert.Empty(t, Warnings(icp))
	assert.Zero(t, LogWarnings(icp))

	expanding := icp
	expanding.CustomerIndustry = "manufacturing companies expanding capacity"
	assert.Empty(t, Warnings(expanding))
}

func TestGeographicSummary(t *testing.T) {
	geo := func(g model.Geography) model.ICP { return model.ICP{ServiceableGeography: g} }

	assert.Equal(t, "Global service area, no geographic restrictions", GeographicSummary(geo(model.Geography{Scope: model.GeoGlobal})))
	assert.Equal(t, "National service in: USA, Canada", GeographicSummary(geo(model.Geography{Scope: model.GeoNational, Countries: []string{"USA", "Canada"}})))
	assert.Equal(t, "National service area", GeographicSummary(geo(model.Geography{Scope: model.GeoNational})))
	assert.Equal(t, "Regional service - Countries: USA | Regions: TX, OK",
		GeographicSummary(geo(model.Geography{Scope: model.GeoRegional, Countries: []string{"USA"}, StatesOrRegions: []string{"TX", "OK"}})))
	assert.Equal(t, "Regional service - Regions: A, B, C, D, E and 2 more",
		GeographicSummary(geo(model.Geography{Scope: model.GeoRegional, StatesOrRegions: []string{"A", "B", "C", "D", "E", "F", "G"}})))
	assert.Equal(t, "Regional service area (specific regions not identified)", GeographicSummary(geo(model.Geography{Scope: model.GeoRegional})))
	assert.Equal(t, "Custom service - Regions: Bay Area", GeographicSummary(geo(model.Geography{Scope: model.GeoCustom, StatesOrRegions: []string{"Bay Area"}})))
	assert.Equal(t, "Geographic scope unclear, no filtering applied", GeographicSummary(geo(model.Geography{Scope: model.GeoUnclear})))
}
