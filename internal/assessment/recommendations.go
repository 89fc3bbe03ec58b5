package assessment

import "rmfaudit/internal/category"

// GeneralCategory labels the recommendation emitted when no risk areas exist.
const GeneralCategory = "General"

type template struct {
	title       string
	description string
	actions     []string
}

var templates = map[category.Category]template{
	category.PrivacyEnhanced: {
		title:       "Strengthen Privacy Controls & Data Protection",
		description: "Implement comprehensive data protection measures including data minimization, encryption, and user consent mechanisms.",
		actions: []string{
			"Conduct privacy impact assessments for AI systems",
			"Implement data encryption at rest and in transit",
			"Establish clear data retention and deletion policies",
			"Deploy user consent management systems",
			"Regular privacy compliance audits",
		},
	},
	category.Safe: {
		title:       "Enhance AI Safety & Risk Mitigation",
		description: "Implement robust safety testing and monitoring systems to prevent harmful AI system outputs.",
		actions: []string{
			"Establish comprehensive safety testing protocols",
			"Implement real-time safety monitoring systems",
			"Create AI incident response procedures",
			"Deploy automated safety guardrails",
			"Conduct regular safety risk assessments",
		},
	},
	category.SecureResilient: {
		title:       "Strengthen Security Posture & Resilience",
		description: "Implement comprehensive security controls to protect AI systems from threats and ensure operational resilience.",
		actions: []string{
			"Deploy multi-factor authentication for AI systems",
			"Establish network segmentation for AI infrastructure",
			"Conduct regular penetration testing",
			"Implement automated threat detection",
			"Create comprehensive disaster recovery procedures",
		},
	},
	category.AccountableTransp: {
		title:       "Improve Governance & Transparency Framework",
		description: "Establish clear accountability frameworks and transparent reporting mechanisms for AI systems.",
		actions: []string{
			"Define clear AI governance roles and responsibilities",
			"Implement comprehensive audit logging systems",
			"Create transparent AI decision reporting processes",
			"Establish regular governance review cycles",
			"Deploy stakeholder communication frameworks",
		},
	},
	category.Explainable: {
		title:       "Enhance Model Interpretability & Explainability",
		description: "Implement explainability tools and documentation to improve AI system transparency and user understanding.",
		actions: []string{
			"Deploy advanced model explanation tools (SHAP, LIME)",
			"Create user-friendly explanation interfaces",
			"Document AI decision-making processes comprehensively",
			"Provide feature importance analysis and visualizations",
			"Train staff on AI explainability concepts",
		},
	},
	category.FairBiasManaged: {
		title:       "Address Bias & Ensure AI Fairness",
		description: "Implement comprehensive bias detection and mitigation strategies to ensure fair AI system outcomes across all demographics.",
		actions: []string{
			"Conduct systematic bias testing across demographics",
			"Implement real-time fairness metrics monitoring",
			"Diversify and balance training datasets",
			"Establish bias review and remediation processes",
			"Deploy automated fairness constraint enforcement",
		},
	},
	category.ValidReliable: {
		title:       "Improve Model Validation & Reliability",
		description: "Strengthen model testing and validation processes to ensure consistent reliability and accuracy in production.",
		actions: []string{
			"Implement comprehensive model testing protocols",
			"Establish continuous performance monitoring",
			"Create robust model versioning and rollback systems",
			"Conduct regular model revalidation cycles",
			"Deploy automated model drift detection",
		},
	},
}

var general = template{
	title:       "Continuous AI Governance Improvement",
	description: "Maintain and enhance your strong compliance posture through continuous monitoring and improvement of AI governance practices.",
	actions: []string{
		"Establish regular AI audit schedules",
		"Implement continuous compliance monitoring",
		"Stay updated with emerging AI regulations",
		"Conduct regular AI governance training programs",
		"Benchmark against industry best practices",
	},
}

func recommend(areas []RiskArea) []Recommendation {
	if len(areas) == 0 {
		return []Recommendation{newRecommendation(GeneralCategory, PriorityMedium, general)}
	}
	out := make([]Recommendation, 0, len(areas))
	for _, area := range areas {
		tpl, ok := templates[area.Category]
		if !ok {
			continue
		}
		out = append(out, newRecommendation(area.Category.String(), area.Priority, tpl))
	}
	return out
}

func newRecommendation(cat string, p Priority, tpl template) Recommendation {
	return Recommendation{
		Category:    cat,
		Priority:    p,
		Title:       tpl.title,
		Description: tpl.description,
		Actions:     append([]string{}, tpl.actions...),
	}
}
