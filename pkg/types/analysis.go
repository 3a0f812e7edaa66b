// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category classifies a paper for the directory. The set is closed.
type Category string

const (
	CategorySkin              Category = "skin"
	CategoryBeauty            Category = "beauty"
	CategoryNutrition         Category = "nutrition"
	CategoryLongevity         Category = "longevity"
	CategoryPrecisionWellness Category = "precision-wellness"
)

// Categories lists every accepted Category in display order.
var Categories = []Category{
	CategorySkin,
	CategoryBeauty,
	CategoryNutrition,
	CategoryLongevity,
	CategoryPrecisionWellness,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Analysis is the structured enrichment the LLM returns for one paper.
// The validate tags are checked right after decoding; a response that fails
// any of them is rejected as a whole.
type Analysis struct {
	// Summary is a 2-3 sentence plain-English summary of the key finding.
	Summary string `json:"summary" yaml:"summary" validate:"required"`

	// ConsumerRelevance explains in 1-2 sentences why the finding matters to a consumer.
	ConsumerRelevance string `json:"consumer_relevance" yaml:"consumer_relevance" validate:"required"`

	// Category is one of Categories.
	Category Category `json:"category" yaml:"category" validate:"required,oneof=skin beauty nutrition longevity precision-wellness"`

	// Tags are 3-5 free-text topic tags.
	Tags []string `json:"tags" yaml:"tags" validate:"required,min=1,dive,required"`

	// BlogHook is a one-sentence opener for a blog post. Optional: drafts
	// fall back to a templated title when it is empty.
	BlogHook string `json:"blog_hook" yaml:"blog_hook"`
}
