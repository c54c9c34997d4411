package domain

import "encoding/json/v2"

// LabelKind tags a label as persisted or as one of the computed groupings.
type LabelKind int

const (
	// LabelPersisted is a user label stored in the repository.
	LabelPersisted LabelKind = iota
	// LabelAll groups every bookmark.
	LabelAll
	// LabelUnlabelled groups bookmarks without any label.
	LabelUnlabelled
)

// Interop ids for the virtual labels. They only exist so that clients working
// with flat integer ids can address the groupings; they are never stored.
const (
	LabelAllID        int64 = -999
	LabelUnlabelledID int64 = -998
)

// SpeakLabelName is the reserved name of the speak label.
const SpeakLabelName = "__SPEAK_LABEL__"

// Default colours (ARGB) used for the virtual labels.
const (
	colorGreenHighlight int32 = -0x7f_ff_00_80
	colorBlueHighlight  int32 = -0x7f_ff_ff_01
)

// Label is a flat, named tag that can be attached to many bookmarks.
// ID 0 means not yet persisted.
type Label struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name" validate:"required,max=100"`
	Color int32     `json:"color"`
	Kind  LabelKind `json:"-"`
}

// LabelAllBookmarks is the virtual label matching every bookmark.
var LabelAllBookmarks = Label{ID: LabelAllID, Name: "All", Color: colorGreenHighlight, Kind: LabelAll}

// LabelNoLabels is the virtual label matching bookmarks without labels.
var LabelNoLabels = Label{ID: LabelUnlabelledID, Name: "Unlabelled", Color: colorBlueHighlight, Kind: LabelUnlabelled}

// VirtualLabels returns the computed labels in presentation order.
func VirtualLabels() []Label {
	return []Label{LabelAllBookmarks, LabelNoLabels}
}

// VirtualLabelByID returns the virtual label for an interop id.
func VirtualLabelByID(id int64) (Label, bool) {
	switch id {
	case LabelAllID:
		return LabelAllBookmarks, true
	case LabelUnlabelledID:
		return LabelNoLabels, true
	default:
		return Label{}, false
	}
}

// Grouping returns the label's kind. A label that only carries one of the
// interop ids is treated as the matching virtual label.
func (l Label) Grouping() LabelKind {
	if l.Kind != LabelPersisted {
		return l.Kind
	}
	if v, ok := VirtualLabelByID(l.ID); ok {
		return v.Kind
	}
	return LabelPersisted
}

// Normalized returns l with Kind derived from its id.
func (l Label) Normalized() Label {
	l.Kind = l.Grouping()
	return l
}

// IsVirtual reports whether the label is a computed grouping.
func (l Label) IsVirtual() bool {
	return l.Grouping() != LabelPersisted
}

// IsNew reports whether a persisted label still needs an id.
func (l Label) IsNew() bool {
	return !l.IsVirtual() && l.ID == 0
}

// Equal compares labels by identity: virtual labels by kind, persisted labels by id.
func (l Label) Equal(o Label) bool {
	k := l.Grouping()
	if k != o.Grouping() {
		return false
	}
	if k != LabelPersisted {
		return true
	}
	return l.ID == o.ID
}

// UnmarshalJSON restores Kind, which is not part of the wire form.
func (l *Label) UnmarshalJSON(data []byte) error {
	type wire Label
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*l = Label(w).Normalized()
	return nil
}

// LabelIDs extracts ids in order.
func LabelIDs(labels []Label) []int64 {
	ids := make([]int64, len(labels))
	for i, l := range labels {
		ids[i] = l.ID
	}
	return ids
}
