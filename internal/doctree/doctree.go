package doctree

// BBox is an axis-aligned box in page coordinates. Origin is the top-left
// corner of the page and Y grows downward.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union returns the smallest box enclosing b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Tag is the structural class assigned to a text run.
type Tag string

const (
	TagBody    Tag = "BODY"
	TagHeading Tag = "HEADING"
	TagTitle   Tag = "TITLE"
)

// TextRun is one visual line of text with its layout attributes.
// Only Tag, CapsRatio and FontRank are filled in after extraction.
type TextRun struct {
	Text      string  `json:"text"`
	Page      int     `json:"page"` // 1-based
	BBox      BBox    `json:"bbox"`
	FontSize  float64 `json:"font_size"`
	Bold      bool    `json:"bold"`
	CapsRatio float64 `json:"caps_ratio"`
	FontRank  int     `json:"font_rank"` // 0 = largest size in the document
	Tag       Tag     `json:"tag"`
}

// Section is a heading with the body text that follows it up to the next heading.
type Section struct {
	Document string `json:"document"`
	Heading  string `json:"section_title"`
	Page     int    `json:"page_number"`
	Text     string `json:"text,omitempty"`
}

// ScoredSection is a Section after relevance scoring. Rank is 1-based.
type ScoredSection struct {
	Section
	Score float64 `json:"relevance_score"`
	Rank  int     `json:"importance_rank"`
}

// Snippet is a short extract taken from a selected section.
type Snippet struct {
	Document string  `json:"document"`
	Text     string  `json:"refined_text"`
	Page     int     `json:"page_number"`
	Score    float64 `json:"-"`
}

// OutlineEntry is one heading in a document outline.
type OutlineEntry struct {
	Level string `json:"level"` // H1..H4
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// DocTree is the structural view of one analyzed document.
type DocTree struct {
	Name     string         `json:"name"`
	Title    string         `json:"title"`
	Outline  []OutlineEntry `json:"outline"`
	Sections []Section      `json:"-"`
	Pages    int            `json:"pages"`
}
