package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"
)

var ErrEmptyBody = errors.New("empty request body")

// Marshal сериализует дерево в XML вида клиента:
// листья получают атрибут __type, контейнеры — только детей.
func Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := encodeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	if n.Type != "" {
		buf.WriteString(` __type="`)
		buf.WriteString(n.Type)
		buf.WriteByte('"')
	}
	// Стабильный порядок атрибутов
	keys := make([]string, 0, len(n.Attr))
	for k := range n.Attr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(n.Attr[k])); err != nil {
			return err
		}
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Value == "" {
		buf.WriteString("/>")
		return nil
	}
	buf.WriteByte('>')
	if n.Value != "" {
		if err := xml.EscapeText(buf, []byte(n.Value)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
	return nil
}

// Unmarshal разбирает XML тела запроса в дерево узлов.
func Unmarshal(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBody
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "__type" {
					n.Type = a.Value
					continue
				}
				n.SetAttr(a.Name.Local, a.Value)
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				n := stack[len(stack)-1]
				// У контейнеров текст — это только отступы форматирования.
				// У листьев пробелы значимы (карты приходят с хвостовыми
				// пробелами), срезаем лишь переводы строк и табуляцию.
				if len(n.Children) > 0 || len(bytes.TrimSpace([]byte(n.Value))) == 0 {
					n.Value = ""
				} else {
					n.Value = strings.Trim(n.Value, "\r\n\t")
				}
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.Value += string(t)
			}
		}
	}
	if root == nil {
		return nil, ErrEmptyBody
	}
	return root, nil
}
