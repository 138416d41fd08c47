// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expand

// fieldTerms are the related-term lists of one research field.
type fieldTerms struct {
	Broader  []string
	Narrower []string
	Adjacent []string
	Methods  []string
}

// fields maps a research field to its related terms. Order matters: on a
// detection tie the earlier field wins.
var fields = []struct {
	Name     string
	Patterns []string
	Terms    fieldTerms
}{
	{"machine_learning",
		[]string{"machine learning", "neural network", "deep learning", "AI", "artificial intelligence"},
		fieldTerms{
			Broader:  []string{"artificial intelligence", "neural networks", "deep learning", "computer science"},
			Narrower: []string{"supervised learning", "unsupervised learning", "reinforcement learning", "transfer learning"},
			Adjacent: []string{"natural language processing", "computer vision", "robotics", "data mining"},
			Methods:  []string{"transformer", "CNN", "RNN", "GAN", "VAE", "attention mechanism", "gradient descent"},
		}},
	{"nlp",
		[]string{"natural language", "NLP", "text processing", "language model", "sentiment analysis"},
		fieldTerms{
			Broader:  []string{"machine learning", "artificial intelligence", "computational linguistics"},
			Narrower: []string{"text classification", "sentiment analysis", "named entity recognition", "machine translation"},
			Adjacent: []string{"speech recognition", "information retrieval", "knowledge graphs", "dialogue systems"},
			Methods:  []string{"BERT", "GPT", "T5", "word embeddings", "tokenization", "parsing"},
		}},
	{"computer_vision",
		[]string{"computer vision", "image processing", "object detection", "CNN", "visual"},
		fieldTerms{
			Broader:  []string{"machine learning", "artificial intelligence", "image processing"},
			Narrower: []string{"object detection", "image segmentation", "face recognition", "optical character recognition"},
			Adjacent: []string{"robotics", "medical imaging", "autonomous vehicles", "augmented reality"},
			Methods:  []string{"convolutional neural network", "YOLO", "R-CNN", "U-Net", "ResNet", "feature extraction"},
		}},
	{"biomedical",
		[]string{"biomedical", "medical", "clinical", "drug", "protein", "gene", "disease"},
		fieldTerms{
			Broader:  []string{"medicine", "biology", "healthcare", "life sciences"},
			Narrower: []string{"drug discovery", "genomics", "proteomics", "clinical trials"},
			Adjacent: []string{"bioinformatics", "medical imaging", "epidemiology", "pharmacology"},
			Methods:  []string{"GWAS", "RNA-seq", "mass spectrometry", "PCR", "immunoassay"},
		}},
	{"materials_science",
		[]string{"materials", "catalyst", "synthesis", "crystal", "molecular"},
		fieldTerms{
			Broader:  []string{"chemistry", "physics", "engineering"},
			Narrower: []string{"nanomaterials", "polymers", "ceramics", "metals", "composites"},
			Adjacent: []string{"chemical engineering", "mechanical engineering", "solid state physics"},
			Methods:  []string{"synthesis", "characterization", "DFT", "molecular dynamics", "X-ray diffraction"},
		}},
	{"physics",
		[]string{"physics", "quantum", "particle", "condensed matter", "spectroscopy"},
		fieldTerms{
			Broader:  []string{"natural sciences", "physical sciences"},
			Narrower: []string{"quantum physics", "condensed matter", "particle physics", "astrophysics"},
			Adjacent: []string{"chemistry", "materials science", "engineering", "mathematics"},
			Methods:  []string{"spectroscopy", "microscopy", "simulation", "theoretical modeling"},
		}},
}

// synonyms maps a canonical concept to its alternative phrasings.
var synonyms = []struct {
	Term     string
	Synonyms []string
}{
	{"neural network", []string{"neural net", "artificial neural network", "ANN", "connectionist model"}},
	{"machine learning", []string{"ML", "statistical learning", "artificial intelligence", "AI"}},
	{"deep learning", []string{"deep neural network", "DNN", "deep net"}},
	{"natural language processing", []string{"NLP", "computational linguistics", "language processing"}},
	{"computer vision", []string{"CV", "machine vision", "image analysis", "visual computing"}},
	{"reinforcement learning", []string{"RL", "reward learning", "sequential decision making"}},
	{"transformer", []string{"attention model", "self-attention", "multi-head attention"}},
	{"convolutional neural network", []string{"CNN", "ConvNet", "convolutional network"}},
	{"recurrent neural network", []string{"RNN", "recurrent network", "sequential network"}},
	{"generative adversarial network", []string{"GAN", "adversarial network", "generative model"}},
	{"variational autoencoder", []string{"VAE", "variational encoder", "latent variable model"}},
	{"large language model", []string{"LLM", "foundation model", "pretrained model"}},
	{"few-shot learning", []string{"meta-learning", "learning to learn", "N-shot learning"}},
	{"zero-shot learning", []string{"zero-shot", "unseen class recognition"}},
	{"transfer learning", []string{"domain adaptation", "knowledge transfer", "fine-tuning"}},
	{"representation learning", []string{"feature learning", "embedding learning", "latent representation"}},
	{"graph neural network", []string{"GNN", "graph network", "geometric deep learning"}},
	{"attention mechanism", []string{"attention", "self-attention", "cross-attention"}},
	{"optimization", []string{"gradient descent", "backpropagation", "parameter optimization"}},
	{"regularization", []string{"dropout", "batch normalization", "weight decay"}},
	{"activation function", []string{"ReLU", "sigmoid", "tanh", "nonlinearity"}},
	{"loss function", []string{"objective function", "cost function", "error function"}},
}

// multiWordTerms are recognized as single concepts when they occur in a query.
var multiWordTerms = []string{
	"machine learning", "deep learning", "neural network", "natural language processing",
	"computer vision", "reinforcement learning", "transfer learning", "few-shot learning",
	"zero-shot learning", "large language model", "transformer model", "attention mechanism",
	"graph neural network", "convolutional neural network", "recurrent neural network",
	"generative adversarial network", "variational autoencoder", "representation learning",
}

var stopWords = toSet(
	"the", "a", "an", "and", "or", "for", "with", "of", "in", "on", "to", "by", "from", "at", "as",
	"is", "are", "be", "being", "into", "that", "this", "these", "those", "using", "use", "based",
	"about", "what", "which", "when", "how", "why", "can", "state", "art", "towards", "toward",
	"new", "novel", "recent", "improved", "improving", "paper", "study", "approach", "method",
	"methods", "framework", "system", "systems",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
