package blif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/princeton-csl/bitgen/internal/xlog"
)

// State is the BLIF parser's primary state.
type State uint8

const (
	Init State = iota
	ParseStarted
	ModelBegan
	ModelEnded
	ParseFinished
	InvalidState
	MultipleModels
	LutNameConflicts
	ParserError
)

// MultipleModelsError is returned when a second .model directive appears.
type MultipleModelsError struct{}

func (MultipleModelsError) Error() string { return "blif: multiple .model directives" }

// LutNameConflictError is returned when two .names blocks share an output
// net.
type LutNameConflictError struct{ Name string }

func (e LutNameConflictError) Error() string {
	return fmt.Sprintf("blif: duplicate LUT output net %q", e.Name)
}

// InvalidStateError is returned when a directive appears in a primary
// state that cannot accept it (e.g. .names before .model).
type InvalidStateError struct {
	Directive string
	State     State
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("blif: %q not valid in state %d", e.Directive, e.State)
}

// Manager parses a BLIF file and exposes its LUT table by output net name.
type Manager struct {
	state State
	luts  map[string]*LutInstance
}

// NewManager returns a fresh, unstarted Manager.
func NewManager() *Manager {
	return &Manager{state: Init, luts: map[string]*LutInstance{}}
}

// State returns the parser's current primary state.
func (m *Manager) State() State { return m.state }

// Lut looks up a parsed LUT by its output net name.
func (m *Manager) Lut(name string) (*LutInstance, bool) {
	l, ok := m.luts[name]
	return l, ok
}

// Parse reads a BLIF file from r, driving the primary state machine over
// .model/.inputs/.outputs/.names/.latch/.subckt/.end/.blackbox directives.
func (m *Manager) Parse(r io.Reader) error {
	m.state = ParseStarted

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var pending []string // accumulated continuation-joined logical line
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		line := strings.Join(pending, " ")
		pending = nil
		return m.dispatch(line, scanner)
	}

	for scanner.Scan() {
		raw := scanner.Text()
		if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = raw[:idx]
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "\\") {
			pending = append(pending, strings.TrimSuffix(trimmed, "\\"))
			continue
		}
		pending = append(pending, trimmed)
		if err := flush(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if m.state != ModelEnded && m.state != ParseFinished {
		return InvalidStateError{"<eof>", m.state}
	}
	m.state = ParseFinished
	return nil
}

func (m *Manager) dispatch(line string, scanner *bufio.Scanner) error {
	fields := strings.Fields(line)
	directive := fields[0]

	switch directive {
	case ".model":
		if m.state != ParseStarted {
			m.state = MultipleModels
			return MultipleModelsError{}
		}
		m.state = ModelBegan
	case ".inputs", ".outputs":
		if m.state != ModelBegan {
			return InvalidStateError{directive, m.state}
		}
	case ".names":
		if m.state != ModelBegan {
			return InvalidStateError{directive, m.state}
		}
		return m.parseNames(fields[1:], scanner)
	case ".latch", ".subckt", ".blackbox":
		if m.state != ModelBegan {
			return InvalidStateError{directive, m.state}
		}
		// accepted and ignored per spec.md §4.2
	case ".end":
		if m.state != ModelBegan {
			return InvalidStateError{directive, m.state}
		}
		m.state = ModelEnded
	default:
		if m.state != ModelBegan {
			return InvalidStateError{directive, m.state}
		}
		// a bare cover row that arrived outside parseNames's own read
		// loop (shouldn't normally happen); ignore defensively.
	}
	return nil
}

// parseNames consumes the .names header and the cover rows that follow it,
// up to the next directive line, building one LutInstance.
func (m *Manager) parseNames(nets []string, scanner *bufio.Scanner) error {
	numNets := len(nets)
	outputNet := nets[numNets-1]

	if numNets <= 1 {
		xlog.Logger.Warn().Str("net", outputNet).Msg("single-input .names")
	}

	var rows [][]Symbol
	for scanner.Scan() {
		raw := scanner.Text()
		if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = raw[:idx]
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ".") {
			// next directive: push it back by dispatching immediately.
			if err := m.finishNames(outputNet, numNets, rows); err != nil {
				return err
			}
			return m.dispatch(trimmed, scanner)
		}
		row, err := parseCoverRow(trimmed, numNets)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return m.finishNames(outputNet, numNets, rows)
}

func (m *Manager) finishNames(outputNet string, numNets int, rows [][]Symbol) error {
	if _, exists := m.luts[outputNet]; exists {
		m.state = LutNameConflicts
		return LutNameConflictError{outputNet}
	}
	lut, err := Populate(numNets, rows)
	if err != nil {
		return err
	}
	m.luts[outputNet] = lut
	return nil
}

func parseCoverRow(line string, numNets int) ([]Symbol, error) {
	fields := strings.Fields(line)
	n := numNets - 1

	var inputPart, outputPart string
	switch {
	case n == 0 && len(fields) == 1:
		outputPart = fields[0]
	case len(fields) == 2 && len(fields[0]) == n:
		inputPart, outputPart = fields[0], fields[1]
	default:
		return nil, NetsAndTruthTableMismatchError{0, len(fields), numNets}
	}
	if len(outputPart) != 1 {
		return nil, NetsAndTruthTableMismatchError{0, len(outputPart), 1}
	}

	row := make([]Symbol, numNets)
	for i, c := range inputPart {
		row[i] = symbolFromRune(c)
	}
	row[n] = symbolFromRune(rune(outputPart[0]))
	return row, nil
}

func symbolFromRune(c rune) Symbol {
	switch c {
	case '1':
		return True
	case '0':
		return False
	case '-':
		return DontCare
	default:
		return Unknown
	}
}
