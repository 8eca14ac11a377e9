package sgf

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/sousei-go/ishi/board"
)

// MoveRecord is one parsed SGF node. Color is board.Empty for nodes that
// carry no move (the root node's SZ/KM/PB/PW/RE/C properties, typically).
// RawCoord is the still-board-size-dependent SGF coordinate text for a
// move node (parse with ParseSGFCoord once the board size is known, e.g.
// from Properties["SZ"]).
type MoveRecord struct {
	Color      board.Color
	RawCoord   string
	Comment    string
	Properties map[string]string
}

// MainLine parses raw as an SGF game tree and returns only its main
// (first-child) line: spec §6 scopes this to "a tree of ;-separated nodes
// with KEY[value] properties", deliberately without variation support,
// since branch selection is the external collaborator's job — this just
// unblocks round-trip testing of Writer's output.
func MainLine(raw string) ([]MoveRecord, error) {
	data := []byte(strings.TrimSpace(raw))
	i := skipSpace(data, 0)
	if i >= len(data) || data[i] != '(' {
		return nil, errors.New("sgf: game tree must start with '('")
	}
	records, _, err := parseGameTree(data, i)
	return records, err
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && (data[i] == ' ' || data[i] == '\n' || data[i] == '\r' || data[i] == '\t') {
		i++
	}
	return i
}

// parseGameTree parses a "(...)" game tree starting at data[i]=='(' and
// returns its main line plus the index just past the closing ')'.
func parseGameTree(data []byte, i int) ([]MoveRecord, int, error) {
	if data[i] != '(' {
		return nil, i, errors.New("sgf: expected '('")
	}
	i++
	var records []MoveRecord
	for {
		i = skipSpace(data, i)
		if i >= len(data) {
			return nil, i, errors.New("sgf: unterminated game tree")
		}
		switch data[i] {
		case ';':
			rec, ni, err := parseNode(data, i)
			if err != nil {
				return nil, i, err
			}
			records = append(records, rec)
			i = ni
		case '(':
			// The first child continues the main line; any further
			// sibling variations at this branch point are skipped.
			child, ni, err := parseGameTree(data, i)
			if err != nil {
				return nil, i, err
			}
			records = append(records, child...)
			i = ni
			for {
				i = skipSpace(data, i)
				if i < len(data) && data[i] == '(' {
					var err error
					if i, err = skipGameTree(data, i); err != nil {
						return nil, i, err
					}
					continue
				}
				break
			}
		case ')':
			return records, i + 1, nil
		default:
			return nil, i, errors.Errorf("sgf: unexpected byte %q at offset %d", data[i], i)
		}
	}
}

// skipGameTree skips over a "(...)" tree without recording anything,
// honoring nested parens so a sibling variation with its own sub-variations
// is skipped correctly.
func skipGameTree(data []byte, i int) (int, error) {
	if data[i] != '(' {
		return i, errors.New("sgf: expected '('")
	}
	depth := 0
	for i < len(data) {
		switch data[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return i, errors.New("sgf: unterminated variation")
}

// parseNode parses one ";KEY[value]KEY[value]..." node starting at
// data[i]==';'.
func parseNode(data []byte, i int) (MoveRecord, int, error) {
	i++ // skip ';'
	props := map[string]string{}
	for {
		i = skipSpace(data, i)
		if i >= len(data) || !isKeyByte(data[i]) {
			break
		}
		keyStart := i
		for i < len(data) && isKeyByte(data[i]) {
			i++
		}
		key := string(data[keyStart:i])
		i = skipSpace(data, i)
		if i >= len(data) || data[i] != '[' {
			return MoveRecord{}, i, errors.Errorf("sgf: property %q missing value", key)
		}
		val, ni, err := parseValue(data, i)
		if err != nil {
			return MoveRecord{}, i, err
		}
		props[key] = val
		i = ni
		// a property may repeat [value][value]; fold into the last one,
		// which is all MainLine's callers need.
		for {
			j := skipSpace(data, i)
			if j < len(data) && data[j] == '[' {
				val, ni, err := parseValue(data, j)
				if err != nil {
					return MoveRecord{}, j, err
				}
				props[key] = val
				i = ni
				continue
			}
			break
		}
	}
	rec := MoveRecord{Properties: props, Comment: props["C"]}
	if v, ok := props["B"]; ok {
		rec.Color = board.Black
		rec.RawCoord = v
	} else if v, ok := props["W"]; ok {
		rec.Color = board.White
		rec.RawCoord = v
	}
	return rec, i, nil
}

func isKeyByte(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// parseValue parses a "[...]" value, unescaping \\ and \].
func parseValue(data []byte, i int) (string, int, error) {
	if data[i] != '[' {
		return "", i, errors.New("sgf: expected '['")
	}
	i++
	var b strings.Builder
	for i < len(data) {
		switch data[i] {
		case '\\':
			if i+1 < len(data) {
				b.WriteByte(data[i+1])
				i += 2
				continue
			}
			return "", i, errors.New("sgf: trailing backslash in value")
		case ']':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(data[i])
			i++
		}
	}
	return "", i, errors.New("sgf: unterminated property value")
}
