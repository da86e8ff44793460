package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeXCal_RoundTrip(t *testing.T) {
	tasks := testTasks(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeXCal(&buf, tasks))

	got, err := DecodeXCal(&buf)
	require.NoError(t, err)
	assertSameTasks(t, tasks, got)
}

func TestToXCal_Structure(t *testing.T) {
	tasks := testTasks(t)
	cal, err := NewCalendar(tasks[1:2], time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	doc, err := ToXCal(cal)
	require.NoError(t, err)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "icalendar", root.Tag)
	assert.Equal(t, NamespaceXCal, root.SelectAttrValue("xmlns", ""))

	vtodo := doc.FindElement("/icalendar/vcalendar/components/vtodo")
	require.NotNil(t, vtodo)

	tests := []struct {
		path string
		want string
	}{
		{"properties/uid/text", "gym"},
		{"properties/summary/text", "Strength training"},
		{"properties/dtstart/date", "2024-01-01"},
		{"properties/dtstamp/date-time", "2024-01-05T12:00:00Z"},
		{"properties/rrule/recur/freq", "WEEKLY"},
		{"properties/rrule/recur/interval", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			el := vtodo.FindElement(tt.path)
			require.NotNil(t, el)
			assert.Equal(t, tt.want, el.Text())
		})
	}

	var days []string
	for _, el := range vtodo.FindElements("properties/rrule/recur/byday") {
		days = append(days, el.Text())
	}
	assert.Equal(t, []string{"MO", "WE"}, days)
}

func TestXCal_CompletionParameters(t *testing.T) {
	tasks := testTasks(t)
	cal, err := NewCalendar(tasks[:1], time.Now())
	require.NoError(t, err)
	doc, err := ToXCal(cal)
	require.NoError(t, err)

	completions := doc.FindElements("//x-librecur-completion")
	require.Len(t, completions, 2)
	assert.Nil(t, completions[0].FindElement("parameters"))
	assert.Equal(t, "FALSE", completions[1].FindElement("parameters/x-completed/text").Text())
	assert.Equal(t, "2024-01-03", completions[1].FindElement("date").Text())

	back, err := FromXCal(doc)
	require.NoError(t, err)
	todo := back.Children[0]
	props := todo.Props.Values(PropCompletion)
	require.Len(t, props, 2)
	assert.Equal(t, "20240103", props[1].Value)
	assert.Equal(t, "FALSE", props[1].Params.Get(ParamCompleted))
}

func TestReadRecur(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<recur><freq>MONTHLY</freq><interval>3</interval><byday>2TU</byday></recur>`))
	assert.Equal(t, "FREQ=MONTHLY;INTERVAL=3;BYDAY=2TU", readRecur(doc.Root()))

	el := etree.NewElement("recur")
	writeRecur(el, "FREQ=WEEKLY;INTERVAL=1;BYDAY=SA,SU")
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;BYDAY=SA,SU", readRecur(el))
}

func TestReadProperty_MultipleText(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<categories><text>pets</text><text>home, garden</text></categories>`))

	prop, err := readProperty(doc.Root())
	require.NoError(t, err)
	assert.Equal(t, ical.PropCategories, prop.Name)
	assert.Equal(t, `pets,home\, garden`, prop.Value)
}

func TestDecodeXCal_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not xml", "definitely <not xml"},
		{"wrong root", `<calendar xmlns="urn:ietf:params:xml:ns:icalendar-2.0"/>`},
		{"no vcalendar", `<icalendar xmlns="urn:ietf:params:xml:ns:icalendar-2.0"></icalendar>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeXCal(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
