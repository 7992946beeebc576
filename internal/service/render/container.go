package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
)

// ContainerID is the id of the element that hosts the detection cards.
const ContainerID = "detections"

// ErrContainerNotFound is returned when the page has no element with ContainerID.
var ErrContainerNotFound = errors.New("container element not found")

// DefaultPage is the page served to browsers. The script swaps the container
// content whenever the viewer hub pushes a freshly rendered fragment.
const DefaultPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Detections</title>
</head>
<body>
<div id="detections"></div>
<script>
(function () {
  const container = document.getElementById('detections');
  const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  const socket = new WebSocket(scheme + location.host + '/api/view');
  socket.onmessage = function (event) { container.innerHTML = event.data; };
})();
</script>
</body>
</html>`

// Container is a parsed page holding the detections element. The Renderer is
// its only writer; readers may run concurrently.
type Container struct {
	mu   sync.RWMutex
	doc  *html.Node
	root *html.Node
}

// NewContainer parses page and locates the element with ContainerID.
func NewContainer(page string) (*Container, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	root := findByID(doc, ContainerID)
	if root == nil {
		return nil, fmt.Errorf("%w: #%s", ErrContainerNotFound, ContainerID)
	}

	return &Container{doc: doc, root: root}, nil
}

// replace drops every child of the container and appends nodes in order.
func (c *Container) replace(nodes []*html.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for child := c.root.FirstChild; child != nil; child = c.root.FirstChild {
		c.root.RemoveChild(child)
	}
	for _, n := range nodes {
		c.root.AppendChild(n)
	}
}

// InnerHTML renders the container's children.
func (c *Container) InnerHTML() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	for child := c.root.FirstChild; child != nil; child = child.NextSibling {
		html.Render(&b, child)
	}
	return b.String()
}

// Document renders the whole page including the container.
func (c *Container) Document() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	html.Render(&b, c.doc)
	return b.String()
}

// Text returns a plain-text rendition of the cards.
func (c *Container) Text() string {
	return html2text.HTML2Text(c.InnerHTML())
}

// CardCount reports how many cards the container currently holds.
func (c *Container) CardCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for child := c.root.FirstChild; child != nil; child = child.NextSibling {
		if isCard(child) {
			count++
		}
	}
	return count
}

func isCard(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "div" && attr(n, "class") == CardClass
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}
