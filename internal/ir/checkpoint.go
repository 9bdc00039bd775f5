package ir

import (
	"strconv"
	"strings"
)

// CheckpointTag distinguishes a concrete checkpoint number from the symbolic tags.
type CheckpointTag int

const (
	TagNumber CheckpointTag = iota
	TagLatest
	TagEarliest
)

// CheckpointNumberOrTag is a checkpoint sequence number or a symbolic tag.
// Earliest is the constant 0; Latest needs one tip lookup to resolve.
type CheckpointNumberOrTag struct {
	Tag    CheckpointTag
	Number uint64
}

// CheckpointAt returns a concrete checkpoint reference.
func CheckpointAt(n uint64) CheckpointNumberOrTag {
	return CheckpointNumberOrTag{Tag: TagNumber, Number: n}
}

var (
	Latest   = CheckpointNumberOrTag{Tag: TagLatest}
	Earliest = CheckpointNumberOrTag{Tag: TagEarliest}
)

// ParseCheckpointNumberOrTag parses a number or one of latest, finalized,
// safe (all meaning latest) and earliest.
func ParseCheckpointNumberOrTag(s string) (CheckpointNumberOrTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latest", "finalized", "safe":
		return Latest, nil
	case "earliest":
		return Earliest, nil
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 10, 64)
	if err != nil {
		return CheckpointNumberOrTag{}, &IDError{Kind: InvalidCheckpoint, Literal: s, Message: "expected a number or latest/earliest"}
	}
	return CheckpointAt(n), nil
}

func (c CheckpointNumberOrTag) String() string {
	switch c.Tag {
	case TagLatest:
		return "latest"
	case TagEarliest:
		return "earliest"
	}
	return strconv.FormatUint(c.Number, 10)
}

// CheckpointRange is start[:end]. A nil End means the single checkpoint Start.
type CheckpointRange struct {
	Start CheckpointNumberOrTag
	End   *CheckpointNumberOrTag
}

func (r CheckpointRange) String() string {
	if r.End == nil {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// CheckpointID selects one checkpoint or an inclusive range of them.
type CheckpointID struct {
	Number *CheckpointNumberOrTag
	Range  *CheckpointRange
}

// ParseCheckpointID parses "n" or "start:end".
func ParseCheckpointID(s string) (CheckpointID, error) {
	start, end, isRange := strings.Cut(s, ":")
	if !isRange {
		n, err := ParseCheckpointNumberOrTag(s)
		if err != nil {
			return CheckpointID{}, err
		}
		return CheckpointID{Number: &n}, nil
	}
	first, err := ParseCheckpointNumberOrTag(start)
	if err != nil {
		return CheckpointID{}, err
	}
	last, err := ParseCheckpointNumberOrTag(end)
	if err != nil {
		return CheckpointID{}, err
	}
	return CheckpointID{Range: &CheckpointRange{Start: first, End: &last}}, nil
}

func (c CheckpointID) String() string {
	if c.Range != nil {
		return c.Range.String()
	}
	if c.Number != nil {
		return c.Number.String()
	}
	return ""
}
