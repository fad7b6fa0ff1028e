package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrEmptyFile is returned when a file has no usable lines at all.
var ErrEmptyFile = errors.New("file is empty")

// Header keywords across the languages the service sees in practice
// (English, Portuguese, Spanish, German, French).
var (
	dateKeywords   = []string{"date", "data", "fecha", "datum"}
	descKeywords   = []string{"description", "descrição", "descricao", "descripción", "merchant", "payee", "details", "memo"}
	amountKeywords = []string{"amount", "valor", "importe", "value", "montant"}
	debitKeywords  = []string{"debit", "débito", "debito", "cargo"}
	creditKeywords = []string{"credit", "crédito", "credito", "abono"}

	// headerKeywords is the flat set used to score candidate header rows.
	headerKeywords = []string{
		"date", "data", "fecha", "datum",
		"description", "descrição", "descricao", "descripción", "merchant", "payee", "memo",
		"amount", "valor", "importe", "montant",
		"debit", "débito", "credit", "crédito",
		"balance", "saldo", "category", "categoria",
	}
)

// fileConfig is the sniffed shape of a delimited file: which delimiter it
// uses, how many metadata lines precede the header, and the header cells.
type fileConfig struct {
	Delimiter   rune
	SkipLines   int
	Headers     []string
	Fingerprint string
}

// detectConfig sniffs delimiter and header position from raw file bytes.
// Bank exports often carry account metadata above the real header, so the
// header is searched for, not assumed to be line one.
func detectConfig(data []byte) (*fileConfig, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := findHeaderLine(lines)
	delimiter := detectDelimiter(lines[headerIdx])
	headers := splitFields(lines[headerIdx], delimiter)

	return &fileConfig{
		Delimiter:   delimiter,
		SkipLines:   headerIdx,
		Headers:     headers,
		Fingerprint: headerFingerprint(headers),
	}, nil
}

// splitLines breaks raw bytes into trimmed lines, dropping empty ones before
// the first content and stripping a UTF-8 BOM if present.
func splitLines(data []byte) []string {
	raw := strings.ReplaceAll(string(data), "\r\n", "\n")
	raw = strings.TrimPrefix(raw, "\uFEFF")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" && len(lines) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	// Drop trailing blanks.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// findHeaderLine scans the first lines for the one that looks most like a
// column header. Score is the number of known header keywords it contains;
// the fallback is the first line.
func findHeaderLine(lines []string) int {
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}

	bestIdx := 0
	bestScore := 0
	for i := 0; i < limit; i++ {
		lower := strings.ToLower(lines[i])
		score := 0
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// detectDelimiter picks the candidate that splits the header into the most
// fields. Comma wins ties by being checked last.
func detectDelimiter(line string) rune {
	candidates := []rune{';', '\t', '|', ','}
	best := ','
	bestCount := 0
	for _, c := range candidates {
		if n := strings.Count(line, string(c)); n > bestCount {
			bestCount = n
			best = c
		}
	}
	return best
}

func splitFields(line string, delimiter rune) []string {
	fields := strings.Split(line, string(delimiter))
	for i := range fields {
		fields[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(fields[i]), `"`))
	}
	return fields
}

// headerFingerprint hashes the normalized header set. Statements from the
// same bank share a fingerprint, which makes repeat layouts easy to spot in
// logs.
func headerFingerprint(headers []string) string {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(h)))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:8])
}

// columnHints maps statement concerns to column indexes, -1 when absent.
type columnHints struct {
	dateCol   int
	descCol   int
	amountCol int
	debitCol  int
	creditCol int
}

// suggestColumns matches header cells against the keyword lists. First hit
// per concern wins.
func suggestColumns(headers []string) columnHints {
	hints := columnHints{dateCol: -1, descCol: -1, amountCol: -1, debitCol: -1, creditCol: -1}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == "" {
			continue
		}
		if hints.dateCol < 0 && containsAny(h, dateKeywords) {
			hints.dateCol = i
		}
		if hints.descCol < 0 && containsAny(h, descKeywords) {
			hints.descCol = i
		}
		if hints.amountCol < 0 && containsAny(h, amountKeywords) && !containsAny(h, []string{"balance", "saldo"}) {
			hints.amountCol = i
		}
		if hints.debitCol < 0 && containsAny(h, debitKeywords) {
			hints.debitCol = i
		}
		if hints.creditCol < 0 && containsAny(h, creditKeywords) {
			hints.creditCol = i
		}
	}
	return hints
}

// statementLike reports whether the headers carry enough signal to trust
// column mapping: a date column plus some kind of amount column.
func (h columnHints) statementLike() bool {
	return h.dateCol >= 0 && (h.amountCol >= 0 || h.debitCol >= 0 || h.creditCol >= 0)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
