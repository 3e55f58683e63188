package render

import (
	"cmp"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jwebster45206/ascension-log/pkg/interleave"
	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
	"github.com/jwebster45206/ascension-log/pkg/summary"
)

// Section keys of the fragments produced by Render.
const (
	SectionTitle    = "title"
	SectionContents = "contents"
	SectionRundown  = "turn-rundown"
)

// Fragment is one logical piece of a rendered log.
type Fragment struct {
	Section string
	Text    string
}

// Join concatenates fragments into one document.
func Join(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Input is everything a full log is rendered from. Interleaver must be fresh;
// rendering consumes it.
type Input struct {
	Title       string
	StartDate   time.Time
	Units       []reconcile.Unit
	Interleaver *interleave.Interleaver
	Summary     *summary.LogSummary
}

// Renderer writes logs in one Format. It is not safe for concurrent use.
type Renderer struct {
	f       Format
	printer *message.Printer
	title   cases.Caser
}

// New creates a renderer for the given format.
func New(f Format) *Renderer {
	return &Renderer{
		f:       f,
		printer: message.NewPrinter(language.English),
		title:   cases.Title(language.English, cases.NoLower),
	}
}

// Rundown returns one text block per unit. Side events left over after the
// last unit are appended to its block, or make up a block of their own when
// there are no units.
func (r *Renderer) Rundown(units []reconcile.Unit, il *interleave.Interleaver) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, r.unit(u, il.Next(u), false))
	}
	rest := il.Flush()
	switch {
	case len(rest.Events) == 0:
	case len(out) == 0:
		out = append(out, r.events(rest.Events))
	default:
		out[len(out)-1] += r.events(rest.Events)
	}
	return out
}

// Render produces the full log: title, table of contents, the day by day turn
// rundown, then the summary sections in a fixed order.
func (r *Renderer) Render(in Input) []Fragment {
	title := in.Title
	if title == "" {
		title = "Ascension Log"
	}
	frags := []Fragment{{Section: SectionTitle, Text: r.f.heading(1, "top", r.f.escape(title))}}
	frags = append(frags, Fragment{Section: SectionContents, Text: r.contents(in.Summary)})

	frags = append(frags, Fragment{Section: SectionRundown, Text: r.f.heading(2, SectionRundown, r.sectionTitle("turn rundown"))})
	firstDay := 1
	if len(in.Summary.Days) > 0 {
		firstDay = in.Summary.Days[0].Day
		frags = append(frags, Fragment{Section: SectionRundown, Text: r.dayHeading(firstDay, firstDay, in.StartDate)})
	}
	for _, u := range in.Units {
		b := in.Interleaver.Next(u)
		var text string
		if u.Kind == reconcile.KindDayChange {
			text = r.dayHeading(u.DayChange.DayNumber, firstDay, in.StartDate) + r.events(b.Events)
		} else {
			text = r.unit(u, b, true)
		}
		frags = append(frags, Fragment{Section: SectionRundown, Text: text})
	}
	if rest := in.Interleaver.Flush(); len(rest.Events) > 0 {
		frags = append(frags, Fragment{Section: SectionRundown, Text: r.events(rest.Events)})
	}

	for _, sec := range summarySections {
		text := r.f.heading(2, sec.key, r.sectionTitle(sec.title)) + sec.render(r, in.Summary)
		frags = append(frags, Fragment{Section: sec.key, Text: text})
	}
	return frags
}

func (r *Renderer) sectionTitle(s string) string {
	return r.f.escape(r.title.String(s))
}

func (r *Renderer) contents(s *summary.LogSummary) string {
	items := []string{r.f.link(SectionRundown, r.sectionTitle("turn rundown"))}
	for _, d := range s.Days {
		items = append(items, r.f.link(dayAnchor(d.Day), r.sectionTitle(fmt.Sprintf("day %d", d.Day))))
	}
	for _, sec := range summarySections {
		items = append(items, r.f.link(sec.key, r.sectionTitle(sec.title)))
	}
	return r.list(items)
}

func dayAnchor(day int) string {
	return fmt.Sprintf("day-%d", day)
}

func (r *Renderer) dayHeading(day, firstDay int, start time.Time) string {
	text := fmt.Sprintf("Day %d", day)
	if !start.IsZero() {
		text += " (" + start.AddDate(0, 0, day-firstDay).Format("January 2, 2006") + ")"
	}
	return r.f.heading(3, dayAnchor(day), r.mark(SlotDayStart, SlotDayEnd, r.f.escape(text)))
}

// unit renders one reconciled unit with its side events. detailed adds one
// line per turn for detailed intervals.
func (r *Renderer) unit(u reconcile.Unit, b interleave.Block, detailed bool) string {
	if u.Kind == reconcile.KindDayChange {
		text := r.paragraph(r.mark(SlotDayStart, SlotDayEnd, r.f.escape(fmt.Sprintf("Day %d begins after turn %d", u.DayChange.DayNumber, u.DayChange.TurnNumber))))
		return text + r.events(b.Events)
	}

	iv := u.Interval
	var sb strings.Builder
	line := r.mark(SlotTurnStart, SlotTurnEnd, r.f.escape(intervalLabel(iv)))
	if t := iv.Aggregate(); !t.Statgain.IsZero() || t.Meat != (logdata.MeatGain{}) {
		line += r.f.escape(fmt.Sprintf(": %s stats, %s meat", r.stats(t.Statgain), r.num(t.Meat.Net())))
	}
	sb.WriteString(r.paragraph(line))

	if detailed {
		var lines []string
		for _, t := range iv.Turns() {
			lines = append(lines, r.turnLine(t, u.Day))
		}
		if len(lines) > 0 {
			sb.WriteString(r.list(lines))
		}
	}
	sb.WriteString(r.events(b.Events))
	if b.Currency > 0 {
		sb.WriteString(r.paragraph(r.f.escape(fmt.Sprintf("Collected %s coins (%s today)", r.num(b.Currency), r.num(b.DayCurrency)))))
	}
	for _, it := range b.NotableDrops {
		sb.WriteString(r.paragraph(r.mark(SlotItemStart, SlotItemEnd, r.f.escape("Found "+it.Name))))
	}
	return sb.String()
}

func intervalLabel(iv *logdata.TurnInterval) string {
	if iv.Length() <= 1 {
		return fmt.Sprintf("[%d] %s", iv.EndTurn, iv.Area)
	}
	return fmt.Sprintf("[%d-%d] %s", iv.StartTurn+1, iv.EndTurn, iv.Area)
}

func (r *Renderer) turnLine(t *logdata.SingleTurn, day int) string {
	parts := []string{fmt.Sprintf("[%d] %s", t.TurnNumber, cmp.Or(t.Encounter, t.Area))}
	for _, c := range t.Consumables {
		if interleave.InDay(c, day) {
			parts = append(parts, consumableText(c))
		}
	}
	if len(t.Drops) > 0 {
		names := make([]string, 0, len(t.Drops))
		for _, d := range t.Drops {
			names = append(names, itemText(d.Name, d.Amount))
		}
		parts = append(parts, "got "+strings.Join(names, ", "))
	}
	if !t.Statgain.IsZero() {
		parts = append(parts, r.stats(t.Statgain))
	}
	return r.f.escape(strings.Join(parts, "; "))
}

func itemText(name string, amount int) string {
	if amount == 1 {
		return name
	}
	return fmt.Sprintf("%d %s", amount, name)
}

var consumeVerbs = map[logdata.ConsumableType]string{
	logdata.ConsumableFood:   "Ate",
	logdata.ConsumableBooze:  "Drank",
	logdata.ConsumableSpleen: "Chewed",
	logdata.ConsumableOther:  "Used",
}

func consumableText(c logdata.Consumable) string {
	s := consumeVerbs[c.Type] + " " + itemText(c.Name, c.Amount)
	if c.Adventures > 0 {
		s += fmt.Sprintf(" (%d adventures)", c.Adventures)
	}
	return s
}

func (r *Renderer) events(events []interleave.Event) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(r.paragraph(r.event(e)))
	}
	return sb.String()
}

func (r *Renderer) event(e interleave.Event) string {
	switch v := e.Value.(type) {
	case logdata.Pull:
		return r.mark(SlotPullStart, SlotPullEnd, r.f.escape("Pulled "+itemText(v.Item, v.Amount)))
	case interleave.UsedConsumable:
		return r.mark(SlotConsumableStart, SlotConsumableEnd, r.f.escape(consumableText(v.Consumable)))
	case logdata.HybridData:
		text := "Hybridized " + v.Name
		if v.Intrinsic {
			text += " (intrinsic)"
		}
		return r.mark(SlotSkillStart, SlotSkillEnd, r.f.escape(text))
	case logdata.HuntedCombat:
		return r.mark(SlotCombatStart, SlotCombatEnd, r.f.escape("Started hunting "+v.Name))
	case logdata.BanishedCombat:
		text := "Banished " + v.Name
		if v.Banisher != "" {
			text += " with " + v.Banisher
		}
		return r.mark(SlotCombatStart, SlotCombatEnd, r.f.escape(text))
	case logdata.DisintegratedCombat:
		return r.mark(SlotCombatStart, SlotCombatEnd, r.f.escape("Disintegrated "+v.Name))
	case logdata.LostCombat:
		return r.mark(SlotCombatStart, SlotCombatEnd, r.f.escape("Lost to "+v.Name))
	case logdata.FamiliarChange:
		return r.mark(SlotFamiliarStart, SlotFamiliarEnd, r.f.escape("Switched familiar to "+v.Familiar))
	case logdata.FreeAction:
		var text string
		switch {
		case v.Runaway:
			text = "Free runaway from " + cmp.Or(v.Name, v.Area)
		case v.Crafting:
			text = "Crafted: " + v.Name
		default:
			text = "Rested at " + cmp.Or(v.Area, v.Name)
		}
		return r.mark(SlotFreeStart, SlotFreeEnd, r.f.escape(text))
	case logdata.LearnedSkill:
		return r.mark(SlotSkillStart, SlotSkillEnd, r.f.escape("Learned "+v.Name))
	case logdata.LevelData:
		return r.mark(SlotLevelStart, SlotLevelEnd, r.f.escape(fmt.Sprintf("Reached level %d", v.Level)))
	case logdata.Note:
		text := strings.TrimSpace(strings.Join([]string{v.Header, v.Footer}, "\n"))
		return r.mark(SlotNoteStart, SlotNoteEnd, r.f.escape(text))
	default:
		return r.f.escape(fmt.Sprintf("%s on turn %d", e.Kind, e.Turn()))
	}
}

func (r *Renderer) mark(start, end Slot, text string) string {
	return r.f.snippet(start) + text + r.f.snippet(end)
}

func (r *Renderer) paragraph(text string) string {
	if r.f.WrapWidth > 0 {
		text = wordwrap.String(text, r.f.WrapWidth)
		text = strings.ReplaceAll(text, "\n", r.f.LineBreak)
	}
	return r.f.ParagraphStart + text + r.f.ParagraphEnd
}

func (r *Renderer) list(items []string) string {
	var sb strings.Builder
	sb.WriteString(r.f.ListStart)
	for _, it := range items {
		sb.WriteString(r.f.ItemStart + it + r.f.ItemEnd)
	}
	sb.WriteString(r.f.ListEnd)
	return sb.String()
}

// table renders escaped header and row cells.
func (r *Renderer) table(header []string, rows [][]string) string {
	all := append([][]string{header}, rows...)
	var widths []int
	if r.f.PadCells {
		widths = make([]int, len(header))
		for _, row := range all {
			for i, c := range row {
				widths[i] = max(widths[i], utf8.RuneCountInString(c))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(r.f.TableStart)
	for n, row := range all {
		start, end := r.f.CellStart, r.f.CellEnd
		if n == 0 {
			start, end = r.f.HeaderCellStart, r.f.HeaderCellEnd
		}
		var line strings.Builder
		line.WriteString(r.f.RowStart)
		for i, c := range row {
			cell := r.f.escape(c)
			if widths != nil {
				cell += strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
			}
			line.WriteString(start + cell + end)
		}
		text := line.String()
		if r.f.PadCells {
			text = strings.TrimRight(text, " ")
		}
		sb.WriteString(text + r.f.RowEnd)
	}
	sb.WriteString(r.f.TableEnd)
	return sb.String()
}

func (r *Renderer) num(n int) string {
	return r.printer.Sprintf("%d", n)
}

func (r *Renderer) stats(s logdata.Statgain) string {
	return r.printer.Sprintf("%d/%d/%d", s.Muscle, s.Mysticality, s.Moxie)
}

func (r *Renderer) none() string {
	return r.paragraph("None")
}
