// Package guidance maps a seller business type to the buyer-versus-competitor
// rules injected into the classification prompt.
package guidance

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Guidance is the classification rule set for one seller business type.
type Guidance struct {
	Title string

	// QualifiedHeading introduces traits of companies that buy.
	QualifiedHeading string
	Qualified        []string

	// RejectHeading introduces traits of non-buyers and competitors.
	RejectHeading string
	Reject        []string

	// Checks are extra lines rendered after the lists, e.g. the key question
	// or named competitor examples.
	ChecksHeading string
	Checks        []string

	// ShowOffering renders the seller's product line under the title.
	ShowOffering bool
	Instruction  string
}

var table = map[model.SellerBusinessType]Guidance{
	model.SellerPhysicalService: {
		Title:            "PHYSICAL SERVICE PROVIDER GUIDANCE",
		ShowOffering:     true,
		QualifiedHeading: "QUALIFIED PROSPECTS (companies that COMMISSION work):",
		Qualified: []string{
			"Real estate DEVELOPERS actively building properties",
			"Retail chains EXPANDING to new locations",
			"Healthcare systems BUILDING new facilities",
			"Hotel chains DEVELOPING new properties",
			"Companies RELOCATING or RENOVATING headquarters",
			"Growing companies needing NEW facilities",
		},
		RejectHeading: "NOT QUALIFIED (companies that just HAVE facilities):",
		Reject: []string{
			"Manufacturers with existing factories (they have maintenance teams)",
			"Established retailers with existing stores (steady state)",
			"Companies not in growth/expansion mode",
			"Service providers to the same industry (consultants, software vendors)",
			"Other construction/maintenance companies (COMPETITORS)",
			"Facilities management companies (they MANAGE, not BUILD)",
			"Trade associations / industry groups (not actual companies)",
			"Oil & gas / energy companies (specialized in-house teams)",
			"Large corporations with in-house construction divisions",
		},
		Checks: []string{
			"KEY QUESTION: Is this company actively COMMISSIONING new construction/services, or do they just EXIST?",
		},
	},
	model.SellerEngineeringServices: {
		Title:            "ENGINEERING/TECHNOLOGY SERVICES GUIDANCE",
		ShowOffering:     true,
		QualifiedHeading: "QUALIFIED PROSPECTS (companies that OUTSOURCE this work):",
		Qualified: []string{
			"OEMs who need external engineering support",
			"Companies TRANSITIONING to new technology",
			"Companies WITHOUT large in-house engineering teams",
			"Startups needing development expertise",
			"Companies with specific project needs beyond capacity",
		},
		RejectHeading: "NOT QUALIFIED (COMPETITORS or companies with in-house capability):",
		Reject: []string{
			"Companies that PROVIDE similar engineering services (COMPETITORS!)",
			"Large tech companies with massive in-house teams",
			"IT consulting firms (they're competitors, not customers)",
			"Software development agencies (competitors)",
		},
		ChecksHeading: "CRITICAL COMPETITOR CHECK:",
		Checks: []string{
			"- If the candidate provides similar services → REJECT as COMPETITOR",
			"- Bosch, Continental, Aptiv for automotive software → COMPETITORS",
			"- Infosys, TCS, Wipro for IT services → COMPETITORS",
		},
	},
	model.SellerSoftwareSaaS: {
		Title:            "SOFTWARE/SAAS GUIDANCE",
		ShowOffering:     true,
		QualifiedHeading: "QUALIFIED PROSPECTS (companies with the PROBLEM this solves):",
		Qualified: []string{
			"Companies actively selling on relevant platforms",
			"Companies with the specific pain point this addresses",
			"Companies using complementary tools (integration opportunity)",
			"Growing companies needing better tooling",
		},
		RejectHeading: "NOT QUALIFIED:",
		Reject: []string{
			"Other software companies (often competitors or don't need this)",
			"Companies without the specific problem",
			"Companies too small to afford/need the solution",
			"Platforms/marketplaces (they're not end users)",
		},
	},
	model.SellerB2BSupplier: {
		Title:            "B2B SUPPLIER GUIDANCE",
		ShowOffering:     true,
		QualifiedHeading: "QUALIFIED PROSPECTS (companies that USE/INCORPORATE these products):",
		Qualified: []string{
			"Manufacturers who need these components",
			"Companies in industries that consume these materials",
			"OEMs who incorporate into their products",
		},
		RejectHeading: "NOT QUALIFIED:",
		Reject: []string{
			"Distributors/resellers (unless that's the model)",
			"Companies in unrelated industries",
			"Other suppliers of similar products (competitors)",
		},
	},
	model.SellerConsulting: {
		Title:            "CONSULTING/ADVISORY GUIDANCE",
		ShowOffering:     true,
		QualifiedHeading: "QUALIFIED PROSPECTS:",
		Qualified: []string{
			"Companies undergoing transformation/change",
			"Companies entering new markets",
			"Companies with strategic challenges",
			"Companies without internal expertise in this area",
		},
		RejectHeading: "NOT QUALIFIED:",
		Reject: []string{
			"Other consulting firms (competitors)",
			"Companies with strong internal capabilities",
			"Companies not in growth/change mode",
		},
	},
}

var generic = Guidance{
	Title:         "GENERAL GUIDANCE",
	Instruction:   "Check if this company would genuinely BUY the product/service.",
	RejectHeading: "REJECT if:",
	Reject: []string{
		"They SELL similar products/services (COMPETITOR)",
		"They serve the same market but don't need this themselves",
		"They're a platform/software that serves the industry but isn't a buyer",
	},
}

// Lookup returns the rule set for t. Unknown or unrecognized types get the
// generic rule set.
func Lookup(t model.SellerBusinessType) Guidance {
	if g, ok := table[t]; ok {
		return g
	}
	return generic
}

// For renders the guidance block for a seller type and offering.
func For(t model.SellerBusinessType, whatTheySell string) string {
	return Lookup(t).Render(whatTheySell)
}

// Render formats g as a prompt section.
func (g Guidance) Render(whatTheySell string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", g.Title)
	if g.ShowOffering {
		fmt.Fprintf(&b, "The seller provides: %s\n", whatTheySell)
	}
	if g.Instruction != "" {
		b.WriteString(g.Instruction + "\n")
	}

	writeList(&b, g.QualifiedHeading, "✓ ", g.Qualified)
	writeList(&b, g.RejectHeading, "✗ ", g.Reject)
	writeList(&b, g.ChecksHeading, "", g.Checks)
	return b.String()
}

func writeList(b *strings.Builder, heading, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	if heading != "" {
		b.WriteString(heading + "\n")
	}
	for _, item := range items {
		b.WriteString(marker + item + "\n")
	}
}
