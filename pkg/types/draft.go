// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DraftStatus tracks a blog draft through the editorial workflow.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusReview    DraftStatus = "review"
	DraftStatusPublished DraftStatus = "published"
)

// GeneratedByAI marks drafts written by the pipeline.
const GeneratedByAI = "ai"

// BlogDraft is a long-form post generated from a paper and stored in blog_drafts.
type BlogDraft struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Slug  string `json:"slug" yaml:"slug"`

	// Body is the markdown text of the post.
	Body string `json:"body" yaml:"body"`

	// Status defaults to DraftStatusDraft; later transitions belong to the editors.
	Status DraftStatus `json:"status" yaml:"status"`

	GeneratedBy string `json:"generated_by" yaml:"generated_by"`

	// RelatedPaperID links the draft to its research paper. Nil when the paper
	// row id is unknown (for example when the paper insert was a duplicate).
	RelatedPaperID *int64 `json:"related_paper_id,omitempty" yaml:"related_paper_id,omitempty"`
}
