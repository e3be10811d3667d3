package icp

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Normalize fills defaults: an unknown seller type becomes "unknown", an
// unrecognized or missing geography scope becomes "unclear", and nil lists
// become empty. Text fields are trimmed. The input is not modified.
func Normalize(icp model.ICP) model.ICP {
	out := icp

	if !out.SellerBusinessType.Valid() {
		if out.SellerBusinessType != "" {
			zap.L().Warn("icp: unknown seller_business_type, using unknown",
				zap.String("seller_business_type", string(out.SellerBusinessType)))
		}
		out.SellerBusinessType = model.SellerUnknown
	}

	out.WhatTheySell = strings.TrimSpace(out.WhatTheySell)
	out.CustomerIndustry = strings.TrimSpace(out.CustomerIndustry)
	out.CustomerCompanySize = strings.TrimSpace(out.CustomerCompanySize)

	out.TargetBuyers = clean(out.TargetBuyers)
	out.PainPointsSolved = clean(out.PainPointsSolved)
	out.IdealCustomerCharacteristics = clean(out.IdealCustomerCharacteristics)
	out.AvoidCompanyTypes = clean(out.AvoidCompanyTypes)

	geo := out.ServiceableGeography
	if !geo.Scope.Valid() {
		if geo.Scope != "" {
			zap.L().Warn("icp: invalid geography scope, using unclear", zap.String("scope", string(geo.Scope)))
		}
		geo.Scope = model.GeoUnclear
	}
	geo.Countries = clean(geo.Countries)
	geo.StatesOrRegions = clean(geo.StatesOrRegions)
	out.ServiceableGeography = geo

	return out
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
