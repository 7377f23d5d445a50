package protocol

import (
	"strconv"
	"strings"
)

// Типы листовых значений протокола. Транспорт сериализует каждое значение
// вместе с его типом, поэтому композер обязан проставлять тип явно.
const (
	TypeS32  = "s32"
	TypeS16  = "s16"
	TypeU8   = "u8"
	TypeBool = "bool"
	TypeStr  = "str"
)

// Node — узел дерева запроса/ответа. Контейнеры несут детей,
// листья несут типизированное значение.
type Node struct {
	Name     string
	Attr     map[string]string
	Type     string
	Value    string
	Children []*Node
}

func NewNode(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) SetAttr(key, value string) *Node {
	if n.Attr == nil {
		n.Attr = make(map[string]string)
	}
	n.Attr[key] = value
	return n
}

func (n *Node) AttrOr(key, def string) string {
	if n.Attr == nil {
		return def
	}
	if v, ok := n.Attr[key]; ok {
		return v
	}
	return def
}

func leaf(name, typ, value string) *Node {
	return &Node{Name: name, Type: typ, Value: value}
}

func S32(name string, v int) *Node {
	return leaf(name, TypeS32, strconv.Itoa(v))
}

func S16(name string, v int) *Node {
	return leaf(name, TypeS16, strconv.Itoa(v))
}

func U8(name string, v int) *Node {
	return leaf(name, TypeU8, strconv.Itoa(v))
}

func Bool(name string, v bool) *Node {
	if v {
		return leaf(name, TypeBool, "1")
	}
	return leaf(name, TypeBool, "0")
}

func Str(name string, v string) *Node {
	return leaf(name, TypeStr, v)
}

// First возвращает первого ребенка (узел модуля внутри call).
func (n *Node) First() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Find возвращает первого прямого ребенка с данным именем.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) Has(name string) bool {
	return n.Find(name) != nil
}

// Text возвращает текст ребенка или default, если ребенка нет.
func (n *Node) Text(name, def string) string {
	c := n.Find(name)
	if c == nil {
		return def
	}
	return c.Value
}

// Int парсит текст ребенка как число. Любая ошибка парсинга
// заменяется на default — частичный успех важнее отказа всего сохранения.
func (n *Node) Int(name string, def int) int {
	c := n.Find(name)
	if c == nil || c.Value == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(c.Value))
	if err != nil {
		return def
	}
	return v
}

// BoolInt парсит булево-подобный текст ребенка в 0/1.
func (n *Node) BoolInt(name string, def int) int {
	c := n.Find(name)
	if c == nil || c.Value == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(c.Value)) {
	case "true", "1":
		return 1
	case "false", "0":
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(c.Value))
	if err != nil {
		return def
	}
	return v
}
