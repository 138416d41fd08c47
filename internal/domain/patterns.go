// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package domain

import "github.com/pdiddy/research-funnel/pkg/types"

// Patterns are the indicator terms of one domain. Keyword hits weigh 2,
// method hits 3, application hits 1.
type Patterns struct {
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Methods      []string `json:"methods" yaml:"methods"`
	Applications []string `json:"applications" yaml:"applications"`
}

// Weights of a hit per pattern kind.
const (
	KeywordWeight     = 2
	MethodWeight      = 3
	ApplicationWeight = 1
)

// table lists domains with pattern data in detection order.
var table = []struct {
	Domain types.Domain
	Patterns
}{
	{types.DomainPhysics, Patterns{
		Keywords: []string{
			"quantum", "particle", "wave", "field theory", "relativity", "thermodynamics",
			"electromagnetism", "optics", "mechanics", "condensed matter", "plasma",
			"photon", "electron", "proton", "neutron", "bosons", "fermions",
			"superconductivity", "magnetism", "spectroscopy", "crystallography",
		},
		Methods: []string{
			"monte carlo simulation", "density functional theory", "molecular dynamics",
			"finite element", "spectroscopy", "diffraction", "scattering",
		},
		Applications: []string{
			"semiconductor", "laser", "detector", "accelerator", "telescope",
			"interferometer", "spectrometer",
		},
	}},
	{types.DomainEngineering, Patterns{
		Keywords: []string{
			"design", "optimization", "control", "system", "manufacturing", "materials",
			"structural", "mechanical", "electrical", "chemical", "civil", "aerospace",
			"automotive", "robotics", "automation", "sensors", "actuators",
			"fluid dynamics", "heat transfer", "vibration", "stress", "strain",
			"fatigue", "fracture", "composite", "alloy", "coating",
		},
		Methods: []string{
			"finite element analysis", "computational fluid dynamics", "optimization",
			"control theory", "signal processing", "image processing", "CAD", "CAM",
		},
		Applications: []string{
			"aircraft", "spacecraft", "vehicle", "engine", "turbine", "pump",
			"compressor", "heat exchanger", "reactor", "bridge", "building",
		},
	}},
	{types.DomainComputerScience, Patterns{
		Keywords: []string{
			"algorithm", "data structure", "programming", "software", "hardware",
			"artificial intelligence", "machine learning", "deep learning",
			"neural network", "computer vision", "natural language processing",
			"database", "network", "security", "cryptography", "blockchain",
			"distributed systems", "cloud computing", "parallel computing",
		},
		Methods: []string{
			"supervised learning", "unsupervised learning", "reinforcement learning",
			"gradient descent", "backpropagation", "convolutional neural network",
			"recurrent neural network", "transformer", "attention mechanism",
		},
		Applications: []string{
			"web application", "mobile app", "game", "recommendation system",
			"search engine", "chatbot", "autonomous vehicle", "smart city",
		},
	}},
	{types.DomainMathematics, Patterns{
		Keywords: []string{
			"theorem", "proof", "algebra", "geometry", "calculus", "topology",
			"analysis", "number theory", "combinatorics", "graph theory",
			"probability", "statistics", "optimization", "differential equation",
			"linear algebra", "abstract algebra", "real analysis", "complex analysis",
		},
		Methods: []string{
			"mathematical proof", "numerical analysis", "statistical analysis",
			"monte carlo method", "optimization algorithm", "approximation theory",
		},
		Applications: []string{
			"cryptography", "coding theory", "mathematical modeling",
			"financial mathematics", "actuarial science",
		},
	}},
	{types.DomainChemistry, Patterns{
		Keywords: []string{
			"molecule", "atom", "bond", "reaction", "catalyst", "synthesis",
			"organic", "inorganic", "physical", "analytical", "biochemistry",
			"polymer", "crystal", "solution", "acid", "base", "oxidation",
			"reduction", "kinetics", "thermodynamics", "spectroscopy",
		},
		Methods: []string{
			"NMR", "mass spectrometry", "chromatography", "crystallography",
			"computational chemistry", "quantum chemistry", "molecular dynamics",
		},
		Applications: []string{
			"drug discovery", "materials synthesis", "catalysis", "battery",
			"solar cell", "pharmaceutical", "cosmetics", "food chemistry",
		},
	}},
	{types.DomainMaterialsScience, Patterns{
		Keywords: []string{
			"material", "crystal", "alloy", "composite", "polymer", "ceramic",
			"metal", "semiconductor", "nanomaterial", "thin film", "coating",
			"properties", "structure", "characterization", "synthesis",
			"mechanical properties", "electrical properties", "thermal properties",
		},
		Methods: []string{
			"X-ray diffraction", "electron microscopy", "atomic force microscopy",
			"spectroscopy", "thermal analysis", "mechanical testing",
		},
		Applications: []string{
			"electronics", "aerospace", "automotive", "energy storage",
			"solar cells", "sensors", "biomedical implants",
		},
	}},
	{types.DomainBiology, Patterns{
		Keywords: []string{
			"cell", "gene", "protein", "DNA", "RNA", "enzyme", "metabolism",
			"evolution", "ecology", "organism", "species", "population",
			"molecular biology", "cell biology", "genetics", "genomics",
			"proteomics", "bioinformatics", "phylogeny", "biodiversity",
		},
		Methods: []string{
			"PCR", "sequencing", "cloning", "microscopy", "cell culture",
			"immunoassay", "western blot", "flow cytometry", "CRISPR",
		},
		Applications: []string{
			"biotechnology", "genetic engineering", "conservation",
			"agriculture", "environmental monitoring", "bioremediation",
		},
	}},
	{types.DomainMedicine, Patterns{
		Keywords: []string{
			"patient", "disease", "treatment", "therapy", "drug", "clinical",
			"diagnosis", "symptom", "pathology", "pharmacology", "epidemiology",
			"public health", "medical imaging", "surgery", "oncology",
			"cardiology", "neurology", "psychiatry", "pediatrics", "geriatrics",
		},
		Methods: []string{
			"clinical trial", "randomized controlled trial", "case study",
			"meta-analysis", "systematic review", "diagnostic imaging",
			"laboratory test", "biopsy", "genetic testing",
		},
		Applications: []string{
			"drug development", "medical device", "diagnostic tool",
			"surgical procedure", "rehabilitation", "preventive medicine",
		},
	}},
	{types.DomainAstronomy, Patterns{
		Keywords: []string{
			"star", "galaxy", "planet", "cosmic", "universe", "telescope",
			"observation", "astrophysics", "cosmology", "dark matter",
			"dark energy", "black hole", "neutron star", "supernova",
			"exoplanet", "solar system", "interstellar", "intergalactic",
		},
		Methods: []string{
			"photometry", "spectroscopy", "interferometry", "radio astronomy",
			"space mission", "ground-based observation", "numerical simulation",
		},
		Applications: []string{
			"space exploration", "satellite", "space telescope",
			"planetary science", "astrobiology", "navigation",
		},
	}},
}

// exclusions are substrings that disqualify a paper for a target domain.
var exclusions = map[types.Domain][]string{
	types.DomainEngineering: {
		"theoretical physics", "particle physics", "cosmology", "astrophysics",
		"pure mathematics", "number theory", "abstract algebra",
		"clinical study", "patient cohort", "epidemiological study",
		"pure biology", "ecology", "evolutionary biology",
	},
	types.DomainPhysics: {
		"manufacturing process", "industrial application", "commercial product",
		"business model", "market analysis", "economic impact",
		"software engineering", "web development", "database design",
		"user interface", "mobile application",
	},
	types.DomainComputerScience: {
		"circuit design", "semiconductor manufacturing", "material properties",
		"pure mathematics", "theoretical proof", "abstract algebra",
	},
}

// arxivCategories maps arXiv category archives to domains.
var arxivCategories = map[string]types.Domain{
	"physics":  types.DomainPhysics,
	"astro-ph": types.DomainAstronomy,
	"cond-mat": types.DomainPhysics,
	"gr-qc":    types.DomainPhysics,
	"hep-ex":   types.DomainPhysics,
	"hep-lat":  types.DomainPhysics,
	"hep-ph":   types.DomainPhysics,
	"hep-th":   types.DomainPhysics,
	"math-ph":  types.DomainPhysics,
	"nlin":     types.DomainPhysics,
	"nucl-ex":  types.DomainPhysics,
	"nucl-th":  types.DomainPhysics,
	"quant-ph": types.DomainPhysics,
	"cs":       types.DomainComputerScience,
	"math":     types.DomainMathematics,
	"eess":     types.DomainEngineering,
	"q-bio":    types.DomainBiology,
	"stat":     types.DomainStatistics,
	"econ":     types.DomainEconomics,
}

// descriptions feed the classification prompt and the domains listing.
var descriptions = map[types.Domain]string{
	types.DomainPhysics:              "Theoretical and experimental physics, quantum mechanics, thermodynamics",
	types.DomainEngineering:          "Applied sciences, design, optimization, systems, manufacturing",
	types.DomainComputerScience:      "Algorithms, AI/ML, software, hardware, data science",
	types.DomainMathematics:          "Pure and applied mathematics, mathematical modeling",
	types.DomainChemistry:            "Molecular chemistry, synthesis, catalysis, materials chemistry",
	types.DomainMaterialsScience:     "Materials properties, characterization, synthesis, applications",
	types.DomainBiology:              "Life sciences, genetics, molecular biology, ecology, evolution",
	types.DomainMedicine:             "Clinical research, healthcare, medical devices, pharmaceuticals",
	types.DomainNeuroscience:         "Brain research, cognitive science, biological neural networks",
	types.DomainPsychology:           "Behavioral science, cognitive psychology, social psychology",
	types.DomainEconomics:            "Economic theory, econometrics, financial modeling, policy",
	types.DomainEnvironmentalScience: "Climate, ecology, environmental monitoring, sustainability",
	types.DomainAstronomy:            "Astrophysics, cosmology, planetary science, space exploration",
	types.DomainGeosciences:          "Earth sciences, geology, meteorology, oceanography",
	types.DomainStatistics:           "Statistical theory, data analysis, probabilistic modeling",
}
