package calendar

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/cyp0633/librecur/task"
	"github.com/emersion/go-ical"
)

// NamespaceXCal is the RFC 6321 XML namespace.
const NamespaceXCal = "urn:ietf:params:xml:ns:icalendar-2.0"

const (
	xcalDate     = "2006-01-02"
	xcalDateTime = "2006-01-02T15:04:05"
)

// EncodeXCal writes tasks as an xCal document.
func EncodeXCal(w io.Writer, tasks []task.Task) error {
	cal, err := NewCalendar(tasks, time.Now())
	if err != nil {
		return err
	}
	doc, err := ToXCal(cal)
	if err != nil {
		return err
	}
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xCal: %w", err)
	}
	return nil
}

// DecodeXCal reads the recurring VTODOs of an xCal document.
func DecodeXCal(r io.Reader) ([]task.Task, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse xCal: %w", err)
	}
	cal, err := FromXCal(doc)
	if err != nil {
		return nil, err
	}
	return FromCalendar(cal)
}

// ToXCal renders cal as an RFC 6321 document.
func ToXCal(cal *ical.Calendar) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", NamespaceXCal)
	if err := writeComponent(root, cal.Component); err != nil {
		return nil, err
	}
	return doc, nil
}

func writeComponent(parent *etree.Element, comp *ical.Component) error {
	el := parent.CreateElement(strings.ToLower(comp.Name))

	props := el.CreateElement("properties")
	for _, name := range slices.Sorted(maps.Keys(comp.Props)) {
		for _, prop := range comp.Props[name] {
			if err := writeProperty(props, &prop); err != nil {
				return fmt.Errorf("%s: %w", comp.Name, err)
			}
		}
	}

	if len(comp.Children) == 0 {
		return nil
	}
	children := el.CreateElement("components")
	for _, child := range comp.Children {
		if err := writeComponent(children, child); err != nil {
			return err
		}
	}
	return nil
}

func writeProperty(parent *etree.Element, prop *ical.Prop) error {
	el := parent.CreateElement(strings.ToLower(prop.Name))

	var paramNames []string
	for name := range prop.Params {
		if name != "VALUE" {
			paramNames = append(paramNames, name)
		}
	}
	if len(paramNames) > 0 {
		params := el.CreateElement("parameters")
		slices.Sort(paramNames)
		for _, name := range paramNames {
			param := params.CreateElement(strings.ToLower(name))
			for _, v := range prop.Params[name] {
				param.CreateElement("text").SetText(v)
			}
		}
	}

	switch prop.ValueType() {
	case ical.ValueDate:
		t, err := prop.DateTime(time.UTC)
		if err != nil {
			return fmt.Errorf("property %s: %w", prop.Name, err)
		}
		el.CreateElement("date").SetText(t.Format(xcalDate))

	case ical.ValueDateTime:
		t, err := prop.DateTime(time.UTC)
		if err != nil {
			return fmt.Errorf("property %s: %w", prop.Name, err)
		}
		value := t.Format(xcalDateTime)
		if strings.HasSuffix(prop.Value, "Z") {
			value += "Z"
		}
		el.CreateElement("date-time").SetText(value)

	case ical.ValueRecurrence:
		writeRecur(el.CreateElement("recur"), prop.Value)

	case ical.ValueDuration:
		el.CreateElement("duration").SetText(prop.Value)

	default:
		text, err := prop.Text()
		if err != nil {
			return fmt.Errorf("property %s: %w", prop.Name, err)
		}
		el.CreateElement("text").SetText(text)
	}
	return nil
}

// writeRecur splits "FREQ=WEEKLY;BYDAY=MO,WE" into one element per
// rule part value.
func writeRecur(el *etree.Element, rule string) {
	for _, part := range strings.Split(rule, ";") {
		key, values, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		for _, v := range strings.Split(values, ",") {
			el.CreateElement(strings.ToLower(key)).SetText(v)
		}
	}
}

// FromXCal parses an RFC 6321 document back into a calendar.
func FromXCal(doc *etree.Document) (*ical.Calendar, error) {
	root := doc.Root()
	if root == nil || root.Tag != "icalendar" {
		return nil, fmt.Errorf("invalid xCal: missing icalendar root element")
	}
	vcal := root.SelectElement("vcalendar")
	if vcal == nil {
		return nil, fmt.Errorf("invalid xCal: missing vcalendar element")
	}
	comp, err := readComponent(vcal)
	if err != nil {
		return nil, err
	}
	return &ical.Calendar{Component: comp}, nil
}

func readComponent(el *etree.Element) (*ical.Component, error) {
	comp := ical.NewComponent(strings.ToUpper(el.Tag))

	if props := el.SelectElement("properties"); props != nil {
		for _, p := range props.ChildElements() {
			prop, err := readProperty(p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", comp.Name, err)
			}
			comp.Props.Add(prop)
		}
	}
	if children := el.SelectElement("components"); children != nil {
		for _, c := range children.ChildElements() {
			child, err := readComponent(c)
			if err != nil {
				return nil, err
			}
			comp.Children = append(comp.Children, child)
		}
	}
	return comp, nil
}

func readProperty(el *etree.Element) (*ical.Prop, error) {
	prop := ical.NewProp(strings.ToUpper(el.Tag))

	var texts []string
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "parameters":
			for _, param := range child.ChildElements() {
				for _, v := range param.ChildElements() {
					prop.Params.Add(strings.ToUpper(param.Tag), v.Text())
				}
			}
		case "date":
			t, err := time.Parse(xcalDate, child.Text())
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", prop.Name, err)
			}
			prop.SetDate(t)
		case "date-time":
			prop.Value = strings.NewReplacer("-", "", ":", "").Replace(child.Text())
		case "recur":
			prop.Value = readRecur(child)
		case "text":
			texts = append(texts, child.Text())
		default:
			prop.Value = child.Text()
		}
	}
	if len(texts) > 0 {
		escaped := make([]string, len(texts))
		for i, text := range texts {
			p := ical.NewProp(prop.Name)
			p.SetText(text)
			escaped[i] = p.Value
		}
		prop.Value = strings.Join(escaped, ",")
	}
	return prop, nil
}

func readRecur(el *etree.Element) string {
	var keys []string
	values := make(map[string][]string)
	for _, part := range el.ChildElements() {
		key := strings.ToUpper(part.Tag)
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = append(values[key], part.Text())
	}
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + "=" + strings.Join(values[key], ",")
	}
	return strings.Join(parts, ";")
}
