// Package render turns a reconciled log into text. The logical content is
// fixed; a Format only supplies the markup around it.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Slot names a place where a format can inject an augmentation snippet.
type Slot string

const (
	SlotTurnStart       Slot = "turn-start-marker"
	SlotTurnEnd         Slot = "turn-end-marker"
	SlotDayStart        Slot = "day-start-marker"
	SlotDayEnd          Slot = "day-end-marker"
	SlotPullStart       Slot = "pull-start-marker"
	SlotPullEnd         Slot = "pull-end-marker"
	SlotConsumableStart Slot = "consumable-start-marker"
	SlotConsumableEnd   Slot = "consumable-end-marker"
	SlotFamiliarStart   Slot = "familiar-start-marker"
	SlotFamiliarEnd     Slot = "familiar-end-marker"
	SlotCombatStart     Slot = "combat-start-marker"
	SlotCombatEnd       Slot = "combat-end-marker"
	SlotFreeStart       Slot = "free-action-start-marker"
	SlotFreeEnd         Slot = "free-action-end-marker"
	SlotLevelStart      Slot = "level-start-marker"
	SlotLevelEnd        Slot = "level-end-marker"
	SlotSkillStart      Slot = "skill-start-marker"
	SlotSkillEnd        Slot = "skill-end-marker"
	SlotNoteStart       Slot = "note-start-marker"
	SlotNoteEnd         Slot = "note-end-marker"
	SlotItemStart       Slot = "item-start-marker"
	SlotItemEnd         Slot = "item-end-marker"
)

// Format holds the decoration of one output flavour. Formats are plain values;
// add a flavour by declaring another one.
type Format struct {
	Name string

	// Heading is a fmt template receiving the level (%[1]d), the anchor (%[2]s)
	// and the heading text (%[3]s). HeadingFunc replaces it when set.
	Heading     string
	HeadingFunc func(level int, anchor, text string) string
	// Link is a fmt template receiving the anchor (%[1]s) and the text (%[2]s).
	Link string

	ParagraphStart, ParagraphEnd string
	LineBreak                    string
	ListStart, ListEnd           string
	ItemStart, ItemEnd           string

	TableStart, TableEnd           string
	RowStart, RowEnd               string
	CellStart, CellEnd             string
	HeaderCellStart, HeaderCellEnd string
	// PadCells aligns table columns with spaces, for formats without real tables.
	PadCells bool

	// Escape quotes text for the target markup. nil means no escaping.
	Escape func(string) string
	// WrapWidth wraps paragraph text at that many columns. 0 disables wrapping.
	WrapWidth int

	Snippets map[Slot]string
}

func (f Format) snippet(s Slot) string {
	return f.Snippets[s]
}

func (f Format) heading(level int, anchor, text string) string {
	if f.HeadingFunc != nil {
		return f.HeadingFunc(level, anchor, text)
	}
	return fmt.Sprintf(f.Heading, level, anchor, text)
}

func (f Format) link(anchor, text string) string {
	return fmt.Sprintf(f.Link, anchor, text)
}

func (f Format) escape(s string) string {
	if f.Escape == nil {
		return s
	}
	return f.Escape(s)
}

var PlainText = Format{
	Name:          "plain",
	HeadingFunc:   plainHeading,
	Link:          "%[2]s",
	ParagraphEnd:  "\n",
	LineBreak:     "\n",
	ListEnd:       "\n",
	ItemStart:     "  - ",
	ItemEnd:       "\n",
	TableEnd:      "\n",
	RowEnd:        "\n",
	CellEnd:       "  ",
	HeaderCellEnd: "  ",
	PadCells:      true,
	Snippets: map[Slot]string{
		SlotDayStart:  "=== ",
		SlotDayEnd:    " ===",
		SlotPullStart: "+ ",
		SlotItemStart: "* ",
	},
}

func plainHeading(level int, _ string, text string) string {
	switch level {
	case 1:
		return text + "\n" + strings.Repeat("=", utf8.RuneCountInString(text)) + "\n\n"
	case 2:
		return text + "\n" + strings.Repeat("-", utf8.RuneCountInString(text)) + "\n\n"
	default:
		return text + "\n\n"
	}
}

var HTML = Format{
	Name:            "html",
	Heading:         "<h%[1]d id=\"%[2]s\">%[3]s</h%[1]d>\n",
	Link:            "<a href=\"#%[1]s\">%[2]s</a>",
	ParagraphStart:  "<p>",
	ParagraphEnd:    "</p>\n",
	LineBreak:       "<br>\n",
	ListStart:       "<ul>\n",
	ListEnd:         "</ul>\n",
	ItemStart:       "<li>",
	ItemEnd:         "</li>\n",
	TableStart:      "<table>\n",
	TableEnd:        "</table>\n",
	RowStart:        "<tr>",
	RowEnd:          "</tr>\n",
	CellStart:       "<td>",
	CellEnd:         "</td>",
	HeaderCellStart: "<th>",
	HeaderCellEnd:   "</th>",
	Escape:          html.EscapeString,
	Snippets: map[Slot]string{
		SlotTurnStart:       "<b>",
		SlotTurnEnd:         "</b>",
		SlotDayStart:        "<span class=\"day\">",
		SlotDayEnd:          "</span>",
		SlotPullStart:       "<span class=\"pull\">",
		SlotPullEnd:         "</span>",
		SlotConsumableStart: "<span class=\"consumable\">",
		SlotConsumableEnd:   "</span>",
		SlotFamiliarStart:   "<span class=\"familiar\">",
		SlotFamiliarEnd:     "</span>",
		SlotCombatStart:     "<span class=\"combat\">",
		SlotCombatEnd:       "</span>",
		SlotFreeStart:       "<span class=\"free\">",
		SlotFreeEnd:         "</span>",
		SlotLevelStart:      "<span class=\"level\">",
		SlotLevelEnd:        "</span>",
		SlotSkillStart:      "<span class=\"skill\">",
		SlotSkillEnd:        "</span>",
		SlotNoteStart:       "<i>",
		SlotNoteEnd:         "</i>",
		SlotItemStart:       "<span class=\"item\">",
		SlotItemEnd:         "</span>",
	},
}

var BBCode = Format{
	Name:            "bbcode",
	HeadingFunc:     bbcodeHeading,
	Link:            "%[2]s",
	ParagraphEnd:    "\n",
	LineBreak:       "\n",
	ListStart:       "[list]\n",
	ListEnd:         "[/list]\n",
	ItemStart:       "[*]",
	ItemEnd:         "\n",
	TableStart:      "[table]\n",
	TableEnd:        "[/table]\n",
	RowStart:        "[tr]",
	RowEnd:          "[/tr]\n",
	CellStart:       "[td]",
	CellEnd:         "[/td]",
	HeaderCellStart: "[td][b]",
	HeaderCellEnd:   "[/b][/td]",
	Escape:          bbcodeEscape,
	Snippets: map[Slot]string{
		SlotTurnStart:       "[b]",
		SlotTurnEnd:         "[/b]",
		SlotDayStart:        "[b][u]",
		SlotDayEnd:          "[/u][/b]",
		SlotPullStart:       "[color=purple]",
		SlotPullEnd:         "[/color]",
		SlotConsumableStart: "[color=darkorange]",
		SlotConsumableEnd:   "[/color]",
		SlotFamiliarStart:   "[color=green]",
		SlotFamiliarEnd:     "[/color]",
		SlotCombatStart:     "[color=red]",
		SlotCombatEnd:       "[/color]",
		SlotFreeStart:       "[color=gray]",
		SlotFreeEnd:         "[/color]",
		SlotLevelStart:      "[color=blue]",
		SlotLevelEnd:        "[/color]",
		SlotSkillStart:      "[color=teal]",
		SlotSkillEnd:        "[/color]",
		SlotNoteStart:       "[i]",
		SlotNoteEnd:         "[/i]",
	},
}

var bbcodeTag = regexp.MustCompile(`\[(/?[A-Za-z*])`)

// bbcodeEscape turns brackets that would open or close a tag into an entity.
// Plain brackets such as turn ranges are kept.
func bbcodeEscape(s string) string {
	return bbcodeTag.ReplaceAllString(s, "&#91;$1")
}

// bbcodeHeading shrinks headings by level; most forums cap size at 7.
func bbcodeHeading(level int, _ string, text string) string {
	size := max(6-level, 3)
	return fmt.Sprintf("[size=%d][b]%s[/b][/size]\n", size, text)
}

var formats = map[string]Format{
	PlainText.Name: PlainText,
	HTML.Name:      HTML,
	BBCode.Name:    BBCode,
}

// FormatByName looks up one of the built-in formats.
func FormatByName(name string) (Format, bool) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// FormatNames lists the built-in formats.
func FormatNames() []string {
	return []string{PlainText.Name, HTML.Name, BBCode.Name}
}
