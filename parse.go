package main

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ButtonSpec is a parsed label/url pair before it is persisted.
type ButtonSpec struct {
	Label string
	URL   string
}

// parseInterval accepts raw seconds or shorthand with an m/h/d suffix.
// Fractional shorthand values are allowed ("1.5h").
func parseInterval(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty interval; examples: 900 | 15m | 2h | 1d")
	}

	unit := time.Duration(0)
	switch s[len(s)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	}

	if unit != 0 {
		value, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q; examples: 900 | 15m | 2h | 1d", s)
		}
		return time.Duration(value * float64(unit)), nil
	}

	seconds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q; examples: 900 | 15m | 2h | 1d", s)
	}
	return time.Duration(seconds) * time.Second, nil
}

var urlSchemeRe = regexp.MustCompile(`(?i)^(?:https?://|tg://|mailto:|ftp://|\w+://)`)

// normalizeButtonURL fills in missing schemes and expands @usernames
// to t.me links so owners can paste buttons without ceremony.
func normalizeButtonURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return u
	}
	if strings.HasPrefix(u, "@") {
		return "https://t.me/" + u[1:]
	}
	if strings.HasPrefix(u, "t.me/") {
		return "https://" + u
	}
	if urlSchemeRe.MatchString(u) {
		return u
	}
	return "https://" + u
}

var buttonSepRe = regexp.MustCompile(`\s+(?:-|–|—|->|→|:)\s+`)

// parseButton parses a single "Label|url" entry. "Label - url" style
// separators are tolerated for owners used to the free-form input.
func parseButton(entry string) (ButtonSpec, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ButtonSpec{}, fmt.Errorf("empty button entry")
	}

	var label, rawURL string
	if idx := strings.Index(entry, "|"); idx >= 0 {
		label = strings.TrimSpace(entry[:idx])
		rawURL = strings.TrimSpace(entry[idx+1:])
	} else if loc := buttonSepRe.FindStringIndex(entry); loc != nil {
		label = strings.TrimSpace(entry[:loc[0]])
		rawURL = strings.TrimSpace(entry[loc[1]:])
	} else {
		return ButtonSpec{}, fmt.Errorf("invalid button %q; expected Label|url", entry)
	}

	rawURL = normalizeButtonURL(rawURL)
	if label == "" || rawURL == "" {
		return ButtonSpec{}, fmt.Errorf("invalid button %q; expected Label|url", entry)
	}
	return ButtonSpec{Label: label, URL: rawURL}, nil
}

// parseButtonList parses "Label|url;Label2|url". Newlines work as entry
// separators too, matching multi-line pastes.
func parseButtonList(raw string) ([]ButtonSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("no buttons given; example: Open|https://example.com;Docs|https://example.com/docs")
	}

	var specs []ButtonSpec
	for _, line := range strings.Split(raw, "\n") {
		for _, entry := range strings.Split(line, ";") {
			if strings.TrimSpace(entry) == "" {
				continue
			}
			spec, err := parseButton(entry)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no buttons given; example: Open|https://example.com;Docs|https://example.com/docs")
	}
	return specs, nil
}

var numericChatRe = regexp.MustCompile(`^-?\d{6,}$`)

// chatRef is a normalized target chat reference: either a resolved
// numeric ID, or a @username that still needs a getChat lookup.
type chatRef struct {
	ID       int64
	Username string
}

// normalizeChatRef accepts numeric IDs, @usernames, bare usernames and
// t.me links (including t.me/c/<internal> for private channels).
func normalizeChatRef(ref string) (chatRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return chatRef{}, fmt.Errorf("empty chat reference")
	}

	if numericChatRe.MatchString(ref) {
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			return chatRef{}, fmt.Errorf("invalid chat id %q", ref)
		}
		return chatRef{ID: id}, nil
	}

	if strings.HasPrefix(ref, "@") {
		return chatRef{Username: ref}, nil
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil {
			return chatRef{}, fmt.Errorf("invalid link %q", ref)
		}
		if !strings.EqualFold(u.Host, "t.me") {
			return chatRef{}, fmt.Errorf("only t.me links are supported")
		}
		parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(parts) == 0 {
			return chatRef{}, fmt.Errorf("bad t.me link %q", ref)
		}
		if parts[0] == "c" {
			if len(parts) < 2 {
				return chatRef{}, fmt.Errorf("bad t.me/c link %q", ref)
			}
			internal, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return chatRef{}, fmt.Errorf("bad t.me/c link %q", ref)
			}
			id, err := strconv.ParseInt(fmt.Sprintf("-100%d", internal), 10, 64)
			if err != nil {
				return chatRef{}, fmt.Errorf("bad t.me/c link %q", ref)
			}
			return chatRef{ID: id}, nil
		}
		if strings.HasPrefix(parts[0], "+") {
			return chatRef{}, fmt.Errorf("private invite links cannot be resolved by the bot")
		}
		return chatRef{Username: "@" + parts[0]}, nil
	}

	if strings.HasPrefix(ref, "t.me/") {
		return normalizeChatRef("https://" + ref)
	}

	return chatRef{Username: "@" + ref}, nil
}
