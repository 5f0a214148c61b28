package typeset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is returned for TeX the converter cannot read.
var ErrSyntax = errors.New("tex syntax error")

var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "sigma": "σ", "tau": "τ",
	"upsilon": "υ", "phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ",
	"omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ",
	"Omega": "Ω",

	"times": "×", "cdot": "·", "div": "÷", "pm": "±", "mp": "∓",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "propto": "∝",
	"infty": "∞", "partial": "∂", "nabla": "∇",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"in": "∈", "notin": "∉", "subset": "⊂", "subseteq": "⊆",
	"supset": "⊃", "cup": "∪", "cap": "∩", "emptyset": "∅",
	"forall": "∀", "exists": "∃", "neg": "¬", "land": "∧", "lor": "∨",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"Leftarrow": "⇐", "leftrightarrow": "↔", "iff": "⇔", "mapsto": "↦",
	"ldots": "…", "cdots": "⋯", "dots": "…",
	"langle": "⟨", "rangle": "⟩",
	"quad": "  ", "qquad": "    ",
}

// Commands that print their argument unchanged.
var passthrough = map[string]bool{
	"text": true, "mathrm": true, "mathbf": true, "mathit": true,
	"mathsf": true, "mathtt": true, "operatorname": true,
}

// Commands that produce nothing themselves.
var ignored = map[string]bool{
	"left": true, "right": true, "displaystyle": true, "big": true,
	"Big": true, "bigg": true, "Bigg": true,
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶',
	'7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽',
	')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆',
	'7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋', '=': '₌', '(': '₍',
	')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'n': 'ₙ',
	'o': 'ₒ', 'x': 'ₓ',
}

// Typeset converts a TeX math expression to Unicode text.
func Typeset(tex string) (string, error) {
	p := &texParser{src: tex}
	out, err := p.expr(false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type texParser struct {
	src string
	pos int
}

func (p *texParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s: %w", p.pos, fmt.Sprintf(format, args...), ErrSyntax)
}

// expr reads until the end of input, or until the closing brace of the
// current group when inGroup is set.
func (p *texParser) expr(inGroup bool) (string, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '}':
			if !inGroup {
				return "", p.errorf("unbalanced }")
			}
			p.pos++
			return b.String(), nil
		case '{':
			p.pos++
			inner, err := p.expr(true)
			if err != nil {
				return "", err
			}
			b.WriteString(inner)
		case '^', '_':
			p.pos++
			arg, err := p.arg()
			if err != nil {
				return "", err
			}
			b.WriteString(script(arg, c))
		case '\\':
			s, err := p.command()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += size
			b.WriteRune(r)
		}
	}
	if inGroup {
		return "", p.errorf("missing }")
	}
	return b.String(), nil
}

// arg reads one argument: a group, a command, or a single rune.
func (p *texParser) arg() (string, error) {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", p.errorf("missing argument")
	}
	switch p.src[p.pos] {
	case '{':
		p.pos++
		return p.expr(true)
	case '\\':
		return p.command()
	case '}':
		return "", p.errorf("missing argument")
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return string(r), nil
}

func (p *texParser) command() (string, error) {
	p.pos++ // backslash
	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		if p.pos >= len(p.src) {
			return "", p.errorf("trailing backslash")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case ',', ';', ':', ' ', '!':
			return " ", nil
		case '\\':
			return "\n", nil
		default:
			return string(c), nil
		}
	}

	if s, ok := symbols[name]; ok {
		return s, nil
	}
	switch {
	case ignored[name]:
		return "", nil
	case passthrough[name]:
		return p.arg()
	}
	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.arg()
		if err != nil {
			return "", err
		}
		den, err := p.arg()
		if err != nil {
			return "", err
		}
		return wrap(num) + "/" + wrap(den), nil
	case "sqrt":
		x, err := p.arg()
		if err != nil {
			return "", err
		}
		return "√" + wrap(x), nil
	}
	return "", p.errorf("unknown command \\%s", name)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// wrap parenthesizes s unless it is a single rune.
func wrap(s string) string {
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	return "(" + s + ")"
}

// script renders s raised (^) or lowered (_), falling back to the caret
// notation when a rune has no Unicode form.
func script(s string, mark byte) string {
	table := superscripts
	if mark == '_' {
		table = subscripts
	}
	var b strings.Builder
	for _, r := range s {
		m, ok := table[r]
		if !ok {
			return string(mark) + wrap(s)
		}
		b.WriteRune(m)
	}
	return b.String()
}
