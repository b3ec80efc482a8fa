// Package taxonomy holds the static strategic planning table:
// Development Area → Outcome → Strategy.
package taxonomy

// strategicContext is the fixed planning taxonomy records are classified
// against. Order within each level is the display order.
var strategicContext = []developmentArea{
	{
		Name: "Academic Leadership",
		Outcomes: []outcome{
			{
				Name: "Faculty Development promoted and accelerated",
				Strategies: []string{
					"Improve faculty command of the emerging aspects of academic leadership, styles and skills, including understanding of contemporary issues in higher education",
					"Enhance professional relationships with colleagues within and outside the University",
					"Advance faculty engagement in multidisciplinary and interdisciplinary collaborations and discourse",
					"Expand capability-building and other development programs for engineering faculty in other Philippine Higher Education Institutions (HEIs)",
				},
			},
			{
				Name: "Program excellence ensured",
				Strategies: []string{
					"Embark on national and international recognition of all programs",
					"Develop programs leading to improvements in teaching, student engagement, and overall educational quality and provide leadership in curriculum innovations in engineering education",
					"Design multidisciplinary capstone courses that develop topnotch engineering attributes",
					"Offer emerging programs in engineering and technology that are responsive to the demands of the industry",
				},
			},
			{
				Name: "Interest in STEM promoted and boosted",
				Strategies: []string{
					"Work with DepEd on enhancing STEM curriculum for senior high school and teachers' competencies",
					"Generate and disseminate information on trends, developments, opportunities, and challenges on STEM strand in senior high school education in the Philippines and other parts of the world",
				},
			},
			{
				Name: "Smart University designed and fully developed",
				Strategies: []string{
					"Guarantee that all laboratories and R&D facilities are upgraded or modernized",
				},
			},
		},
	},
	{
		Name: "Research and Innovation",
		Outcomes: []outcome{
			{
				Name: "University Research and Innovation Ecosystem Advanced",
				Strategies: []string{
					"Promote cross-disciplinary and interdisciplinary research collaborations",
					"Strengthen capability building of researchers in different fields",
				},
			},
			{
				Name: "The Science, Technology, Engineering and Environment Research Hub: Innovation Facilities and Programs Strengthened and Promoted",
				Strategies: []string{
					"Establish the STEER Hub's Corps of Experts",
				},
			},
			{
				Name: "The Building Research and Innovation Development Goals for Engineering Schools (BRIDGES) Program: Engineering Research and Innovation Applied",
				Strategies: []string{
					"Spearhead collaboration among HEIs on the conduct of engineering research and innovation on SDGs and other domains",
				},
			},
		},
	},
	{
		Name: "Social Responsibility",
		Outcomes: []outcome{
			{
				Name: "Families and Communities Empowered through Inclusive Community Engagements",
				Strategies: []string{
					"Inculcate the culture of volunteerism among the university community and other stakeholders",
				},
			},
		},
	},
	{
		Name: "Internationalization",
		Outcomes: []outcome{
			{
				Name: "Global Academic Cooperation Advanced",
				Strategies: []string{
					"Intensify international linkages and memberships",
					"Spearhead international collaborations on the advancement of engineering and technology education",
					"Organize and participate in international scholarly events",
				},
			},
			{
				Name: "Boundaries Transcended through Academic Mobility",
				Strategies: []string{
					"Strengthen inbound and outbound Academic Mobility",
					"Increase the number of international students and faculty",
				},
			},
			{
				Name: "Wider Transnational Education Highways Engineered",
				Strategies: []string{
					"Offer programs under transnational higher education arrangement with foreign universities",
				},
			},
			{
				Name: "World Engaged through Research Collaborations and Community Partnerships",
				Strategies: []string{
					"Develop research programs with international partners towards attaining SDGs",
					"Undertake community management with international partners",
				},
			},
		},
	},
}

type developmentArea struct {
	Name     string
	Outcomes []outcome
}

type outcome struct {
	Name       string
	Strategies []string
}

// DevelopmentAreas returns the area names in display order.
func DevelopmentAreas() []string {
	out := make([]string, 0, len(strategicContext))
	for _, da := range strategicContext {
		out = append(out, da.Name)
	}
	return out
}

// Outcomes returns the outcomes under a development area, empty for an
// unknown area.
func Outcomes(area string) []string {
	for _, da := range strategicContext {
		if da.Name == area {
			out := make([]string, 0, len(da.Outcomes))
			for _, o := range da.Outcomes {
				out = append(out, o.Name)
			}
			return out
		}
	}
	return []string{}
}

// Strategies returns the strategies under an (area, outcome) pair, empty
// for unknown inputs.
func Strategies(area, outcomeName string) []string {
	for _, da := range strategicContext {
		if da.Name != area {
			continue
		}
		for _, o := range da.Outcomes {
			if o.Name == outcomeName {
				return append([]string{}, o.Strategies...)
			}
		}
	}
	return []string{}
}

// ValidTriple reports whether (area, outcome, strategy) is a known
// classification path. The empty triple is valid: records may be
// unclassified.
func ValidTriple(area, outcomeName, strategy string) bool {
	if area == "" && outcomeName == "" && strategy == "" {
		return true
	}
	for _, s := range Strategies(area, outcomeName) {
		if s == strategy {
			return true
		}
	}
	return false
}

// Tree returns the full taxonomy as a nested map for API consumers.
func Tree() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(strategicContext))
	for _, da := range strategicContext {
		outcomes := make(map[string][]string, len(da.Outcomes))
		for _, o := range da.Outcomes {
			outcomes[o.Name] = append([]string{}, o.Strategies...)
		}
		out[da.Name] = outcomes
	}
	return out
}
