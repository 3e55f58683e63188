// Package ingest decodes log documents produced by upstream parsers and feeds
// them into a timeline store.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
)

// Format is the encoding of a log document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatJSONL
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSONL:
		return "jsonl"
	default:
		return "json"
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// FormatFromContentType picks a format from an HTTP Content-Type, defaulting to JSON.
func FormatFromContentType(ct string) Format {
	ct = strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	switch ct {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML
	case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// Header describes the log as a whole.
type Header struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Mode      string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Iteration string `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	// StartDate is the real date of the first day, as YYYY-MM-DD.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
}

// Section names, also used as JSONL record kinds in singular form.
const (
	SectionHeader               = "header"
	SectionDayChanges           = "day_changes"
	SectionTurns                = "turns"
	SectionIntervals            = "intervals"
	SectionFamiliarChanges      = "familiar_changes"
	SectionPulls                = "pulls"
	SectionEquipmentChanges     = "equipment_changes"
	SectionPlayerSnapshots      = "player_snapshots"
	SectionLevels               = "levels"
	SectionLearnedSkills        = "learned_skills"
	SectionHybridContent        = "hybrid_content"
	SectionHuntedCombats        = "hunted_combats"
	SectionBanishedCombats      = "banished_combats"
	SectionDisintegratedCombats = "disintegrated_combats"
	SectionLostCombats          = "lost_combats"
	SectionNotes                = "notes"
)

// Document is a complete log as handed over by an upstream parser.
type Document struct {
	Header `yaml:",inline"`

	DayChanges           []logdata.DayChange           `json:"day_changes,omitempty" yaml:"day_changes,omitempty"`
	Turns                []*logdata.SingleTurn         `json:"turns,omitempty" yaml:"turns,omitempty"`
	Intervals            []*logdata.TurnInterval       `json:"intervals,omitempty" yaml:"intervals,omitempty"`
	FamiliarChanges      []logdata.FamiliarChange      `json:"familiar_changes,omitempty" yaml:"familiar_changes,omitempty"`
	Pulls                []logdata.Pull                `json:"pulls,omitempty" yaml:"pulls,omitempty"`
	EquipmentChanges     []logdata.EquipmentChange     `json:"equipment_changes,omitempty" yaml:"equipment_changes,omitempty"`
	PlayerSnapshots      []logdata.PlayerSnapshot      `json:"player_snapshots,omitempty" yaml:"player_snapshots,omitempty"`
	Levels               []logdata.LevelData           `json:"levels,omitempty" yaml:"levels,omitempty"`
	LearnedSkills        []logdata.LearnedSkill        `json:"learned_skills,omitempty" yaml:"learned_skills,omitempty"`
	HybridContent        []logdata.HybridData          `json:"hybrid_content,omitempty" yaml:"hybrid_content,omitempty"`
	HuntedCombats        []logdata.HuntedCombat        `json:"hunted_combats,omitempty" yaml:"hunted_combats,omitempty"`
	BanishedCombats      []logdata.BanishedCombat      `json:"banished_combats,omitempty" yaml:"banished_combats,omitempty"`
	DisintegratedCombats []logdata.DisintegratedCombat `json:"disintegrated_combats,omitempty" yaml:"disintegrated_combats,omitempty"`
	LostCombats          []logdata.LostCombat          `json:"lost_combats,omitempty" yaml:"lost_combats,omitempty"`
	Notes                []logdata.Note                `json:"notes,omitempty" yaml:"notes,omitempty"`

	// lines maps a section to the source line of each of its records, for
	// documents decoded from JSON Lines.
	lines map[string][]int
}

func (d *Document) line(section string, index int) int {
	if l := d.lines[section]; index < len(l) {
		return l[index]
	}
	return 0
}

// Parse decodes a document. A JSON or YAML syntax error fails the whole
// document; in JSON Lines each bad line becomes a RecordError and decoding
// goes on.
func Parse(data []byte, f Format) (*Document, []RecordError, error) {
	switch f {
	case FormatJSONL:
		doc, errs := parseJSONL(data)
		return doc, errs, nil
	case FormatYAML:
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, logdata.InvalidArgument("failed to parse YAML log: %v", err)
		}
		return &doc, nil, nil
	default:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, logdata.InvalidArgument("failed to parse JSON log: %v", err)
		}
		return &doc, nil, nil
	}
}

type kindHeader struct {
	Kind string `json:"kind"`
}

func parseJSONL(data []byte) (*Document, []RecordError) {
	doc := &Document{lines: make(map[string][]int)}
	var errs []RecordError
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var head kindHeader
		if err := json.Unmarshal(raw, &head); err != nil {
			errs = append(errs, RecordError{Line: n, Err: logdata.InvalidArgument("corrupt record: %v", err)})
			continue
		}
		section, err := doc.decodeRecord(head.Kind, raw)
		if err != nil {
			errs = append(errs, RecordError{Section: section, Line: n, Err: err})
			continue
		}
		if section != SectionHeader {
			doc.lines[section] = append(doc.lines[section], n)
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, RecordError{Line: n + 1, Err: logdata.InvalidArgument("failed to read line: %v", err)})
	}
	return doc, errs
}

func decodeInto[T any](raw []byte, dst *[]T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return logdata.InvalidArgument("corrupt record: %v", err)
	}
	*dst = append(*dst, v)
	return nil
}

// decodeRecord appends one JSON Lines record to its section.
func (d *Document) decodeRecord(kind string, raw []byte) (string, error) {
	switch kind {
	case "header":
		if err := json.Unmarshal(raw, &d.Header); err != nil {
			return SectionHeader, logdata.InvalidArgument("corrupt header: %v", err)
		}
		return SectionHeader, nil
	case "day_change":
		return SectionDayChanges, decodeInto(raw, &d.DayChanges)
	case "turn":
		return SectionTurns, decodeInto(raw, &d.Turns)
	case "interval":
		return SectionIntervals, decodeInto(raw, &d.Intervals)
	case "familiar_change":
		return SectionFamiliarChanges, decodeInto(raw, &d.FamiliarChanges)
	case "pull":
		return SectionPulls, decodeInto(raw, &d.Pulls)
	case "equipment_change":
		return SectionEquipmentChanges, decodeInto(raw, &d.EquipmentChanges)
	case "player_snapshot":
		return SectionPlayerSnapshots, decodeInto(raw, &d.PlayerSnapshots)
	case "level":
		return SectionLevels, decodeInto(raw, &d.Levels)
	case "learned_skill":
		return SectionLearnedSkills, decodeInto(raw, &d.LearnedSkills)
	case "hybrid_content":
		return SectionHybridContent, decodeInto(raw, &d.HybridContent)
	case "hunted_combat":
		return SectionHuntedCombats, decodeInto(raw, &d.HuntedCombats)
	case "banished_combat":
		return SectionBanishedCombats, decodeInto(raw, &d.BanishedCombats)
	case "disintegrated_combat":
		return SectionDisintegratedCombats, decodeInto(raw, &d.DisintegratedCombats)
	case "lost_combat":
		return SectionLostCombats, decodeInto(raw, &d.LostCombats)
	case "note":
		return SectionNotes, decodeInto(raw, &d.Notes)
	case "":
		return "", logdata.InvalidArgument("record has no kind")
	default:
		return "", logdata.InvalidArgument("unknown record kind %q", kind)
	}
}

// JSON encodes the document in its canonical stored form.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log document: %w", err)
	}
	return data, nil
}
