package domain

import (
	"encoding/json"
	"time"
)

// ButtonClick is one named counter in a broadcast-level click collection.
type ButtonClick struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ButtonClicks is the encoded counter collection stored as a single text
// column on the broadcast record. Entries are unique by name and keep their
// insertion order so the stored form stays stable across rewrites.
type ButtonClicks []ButtonClick

func (c ButtonClicks) Increment(name string) ButtonClicks {
	for i := range c {
		if c[i].Name == name {
			c[i].Count++
			return c
		}
	}
	return append(c, ButtonClick{Name: name, Count: 1})
}

func (c ButtonClicks) Count(name string) int {
	for i := range c {
		if c[i].Name == name {
			return c[i].Count
		}
	}
	return 0
}

func (c ButtonClicks) Encode() (string, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeButtonClicks(encoded string) (ButtonClicks, error) {
	if encoded == "" {
		return ButtonClicks{}, nil
	}
	var c ButtonClicks
	if err := json.Unmarshal([]byte(encoded), &c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecipientButtonClick additionally records when the recipient last clicked
// the button.
type RecipientButtonClick struct {
	Name          string    `json:"name"`
	Count         int       `json:"count"`
	LastClickedAt time.Time `json:"last_clicked_at"`
}

type RecipientButtonClicks []RecipientButtonClick

func (c RecipientButtonClicks) Increment(name string, now time.Time) RecipientButtonClicks {
	for i := range c {
		if c[i].Name == name {
			c[i].Count++
			c[i].LastClickedAt = now
			return c
		}
	}
	return append(c, RecipientButtonClick{Name: name, Count: 1, LastClickedAt: now})
}

func (c RecipientButtonClicks) Encode() (string, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeRecipientButtonClicks(encoded string) (RecipientButtonClicks, error) {
	if encoded == "" {
		return RecipientButtonClicks{}, nil
	}
	var c RecipientButtonClicks
	if err := json.Unmarshal([]byte(encoded), &c); err != nil {
		return nil, err
	}
	return c, nil
}
