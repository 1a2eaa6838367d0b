package inspect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/roshangit23/ReadyTestAPI/internal/http"
)

// Node is one element of a parsed XML document.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Find walks a slash separated path of element names below n, returning
// the first match. "user/name" on <users> finds users>user>name.
func (n *Node) Find(path string) (*Node, bool) {
	current := n
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		var next *Node
		for _, child := range current.Children {
			if child.Name == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

// IsXML reports whether the response declares an XML content type.
func IsXML(resp *http.Response) bool {
	ct := strings.ToLower(resp.GetHeader("Content-Type"))
	return strings.Contains(ct, "/xml") || strings.Contains(ct, "+xml")
}

// ExtractXML parses the body into a node tree rooted at the document element.
func ExtractXML(resp *http.Response) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(resp.GetBody()))

	var stack []*Node
	var root *Node
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML response: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, attr := range t.Attr {
				node.Attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else if root == nil {
				root = node
			}
			stack = append(stack, node)
		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parsing XML response: no root element")
	}
	return root, nil
}
