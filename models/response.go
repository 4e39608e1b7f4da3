package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"discordbridge/core"
)

// Response fields as named in the webhook's JSON answer
const (
	FieldReply    = "reply"
	FieldEmbed    = "embed"
	FieldReaction = "reaction"
	FieldFileURL  = "fileUrl"
)

// ResponseAction is the action record returned by the webhook.
// Each present field triggers one platform action; fields are independent and may all be set.
type ResponseAction struct {
	Reply    mo.Option[string]
	Embed    mo.Option[*discordgo.MessageEmbed]
	Reaction mo.Option[string]
	FileURL  mo.Option[string]

	// Invalid holds fields that were present but could not be read, keyed by field name.
	// They fail at their own step of the dispatch so earlier actions still run.
	Invalid map[string]error
}

// IsEmpty reports whether the record requests no action at all
func (a ResponseAction) IsEmpty() bool {
	return a.Reply.IsAbsent() && a.Embed.IsAbsent() && a.Reaction.IsAbsent() && a.FileURL.IsAbsent() &&
		len(a.Invalid) == 0
}

// FieldError returns the parse error of a field, or nil when the field was absent or valid
func (a ResponseAction) FieldError(field string) error {
	return a.Invalid[field]
}

type rawResponseAction struct {
	Reply    json.RawMessage `json:"reply"`
	Embed    json.RawMessage `json:"embed"`
	Reaction json.RawMessage `json:"reaction"`
	FileURL  json.RawMessage `json:"fileUrl"`
}

// ParseResponseAction reads a webhook response body.
// Unknown fields are ignored, empty strings and null/false values count as absent, an empty body or a
// JSON value that is not an object yields an empty record. Only a body that is not JSON at all is an error;
// a known field of the wrong type is recorded in Invalid and leaves the other fields usable.
func ParseResponseAction(body []byte) (ResponseAction, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ResponseAction{}, nil
	}

	if !json.Valid(trimmed) {
		return ResponseAction{}, fmt.Errorf("%w: body is not valid JSON", core.ErrMalformedResponse)
	}

	if trimmed[0] != '{' {
		return ResponseAction{}, nil
	}

	var raw rawResponseAction
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return ResponseAction{}, fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}

	var (
		action ResponseAction
		err    error
	)
	invalid := func(field string, err error) {
		if action.Invalid == nil {
			action.Invalid = make(map[string]error)
		}
		action.Invalid[field] = err
	}

	if action.Reply, err = parseStringField(FieldReply, raw.Reply); err != nil {
		invalid(FieldReply, err)
	}
	if action.Embed, err = parseEmbedField(raw.Embed); err != nil {
		invalid(FieldEmbed, err)
	}
	if action.Reaction, err = parseStringField(FieldReaction, raw.Reaction); err != nil {
		invalid(FieldReaction, err)
	}
	if action.FileURL, err = parseStringField(FieldFileURL, raw.FileURL); err != nil {
		invalid(FieldFileURL, err)
	}

	return action, nil
}

func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", `""`, "0":
		return true
	}
	return false
}

func parseStringField(name string, raw json.RawMessage) (mo.Option[string], error) {
	if isFalsy(raw) {
		return mo.None[string](), nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return mo.None[string](), fmt.Errorf("%w: %q must be a string", core.ErrMalformedResponse, name)
	}
	return mo.Some(value), nil
}

func parseEmbedField(raw json.RawMessage) (mo.Option[*discordgo.MessageEmbed], error) {
	if isFalsy(raw) {
		return mo.None[*discordgo.MessageEmbed](), nil
	}

	var embed discordgo.MessageEmbed
	if err := json.Unmarshal(raw, &embed); err != nil {
		return mo.None[*discordgo.MessageEmbed](), fmt.Errorf("%w: \"embed\" must be an object", core.ErrMalformedResponse)
	}
	return mo.Some(&embed), nil
}
