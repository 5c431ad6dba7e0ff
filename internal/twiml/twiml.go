// Package twiml builds the instruction documents the telephony provider
// executes against a live call: speak text, play audio, gather speech,
// hang up.
package twiml

import (
	"encoding/xml"
	"strconv"
	"time"
)

// Response is one instruction document. Verbs execute in emission order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Gather arms a bounded speech-capture window. The provider POSTs the
// transcript (or an empty result, when ActionOnEmptyResult is set) to Action
// when the window closes.
type Gather struct {
	XMLName             xml.Name `xml:"Gather"`
	Input               string   `xml:"input,attr,omitempty"`
	Action              string   `xml:"action,attr,omitempty"`
	Method              string   `xml:"method,attr,omitempty"`
	Timeout             int      `xml:"timeout,attr,omitempty"`
	SpeechTimeout       string   `xml:"speechTimeout,attr,omitempty"`
	ActionOnEmptyResult bool     `xml:"actionOnEmptyResult,attr,omitempty"`
	Play                *Play
	Say                 *Say
}

func New() *Response {
	return &Response{}
}

func (r *Response) Say(text string) *Response {
	r.Verbs = append(r.Verbs, Say{Text: text})
	return r
}

func (r *Response) Play(url string) *Response {
	r.Verbs = append(r.Verbs, Play{URL: url})
	return r
}

func (r *Response) Hangup() *Response {
	r.Verbs = append(r.Verbs, Hangup{})
	return r
}

// GatherSpeech arms a speech gather that plays audio inside the window, so
// the callee can respond as soon as they have heard enough.
func (r *Response) GatherSpeech(action, playURL string, timeout, speechTimeout time.Duration) *Response {
	r.Verbs = append(r.Verbs, Gather{
		Input:               "speech",
		Action:              action,
		Method:              "POST",
		Timeout:             int(timeout.Seconds()),
		SpeechTimeout:       formatSeconds(speechTimeout),
		ActionOnEmptyResult: true,
		Play:                &Play{URL: playURL},
	})
	return r
}

// Render emits the XML document, declaration included.
func (r *Response) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", err
	}
	return xml.Header + string(body), nil
}

func formatSeconds(d time.Duration) string {
	if d <= 0 {
		return "auto"
	}
	return strconv.Itoa(int(d.Seconds()))
}
