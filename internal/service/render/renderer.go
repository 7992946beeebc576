package render

import (
	"detectionview/internal/model"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CardClass is the class attribute of every rendered card.
const CardClass = "card"

// Renderer turns detection lists into cards inside a Container.
type Renderer struct {
	container *Container
}

func NewRenderer(container *Container) *Renderer {
	return &Renderer{container: container}
}

// Container returns the container the Renderer writes to.
func (r *Renderer) Container() *Container {
	return r.container
}

// RenderDetections replaces the container content with one card per detection,
// newest first. The input is assumed oldest-first and is not modified.
// All cards are built before the container is touched.
func (r *Renderer) RenderDetections(detections []model.Detection) error {
	cards := make([]*html.Node, 0, len(detections))
	for i := len(detections) - 1; i >= 0; i-- {
		card, err := buildCard(detections[i])
		if err != nil {
			return err
		}
		cards = append(cards, card)
	}

	r.container.replace(cards)
	return nil
}

// FormatConfidence renders a [0,1] confidence as a percentage with one decimal.
// Ties round away from zero, so 0.0025 is "0.3%".
func FormatConfidence(confidence float64) string {
	percent := math.Round(confidence*100*10) / 10
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}

// cardMarkup interpolates the fields without escaping: markup inside label,
// timestamp, msg or image is interpreted by the page. This is a known
// injection risk of the upstream contract and is intentionally left as is.
func cardMarkup(d model.Detection) string {
	return fmt.Sprintf(`<img src="%s" alt="Detection Image" /><h3>%s (%s)</h3><h3>%s</h3><p>%s</p>`,
		d.Image, d.Label, FormatConfidence(d.Confidence), d.Timestamp, d.Msg)
}

func buildCard(d model.Detection) (*html.Node, error) {
	card := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: CardClass}},
	}

	children, err := html.ParseFragment(strings.NewReader(cardMarkup(d)), card)
	if err != nil {
		return nil, fmt.Errorf("parse card for %q: %w", d.Label, err)
	}
	for _, child := range children {
		card.AppendChild(child)
	}
	return card, nil
}
