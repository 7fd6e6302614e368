package rntuple

import (
	"fmt"

	"github.com/lobis/uproot-go/format"
)

// StructRole classifies how a field's value is assembled from its
// children.
type StructRole uint16

const (
	RoleLeaf StructRole = iota
	RoleCollection
	RoleRecord
	RoleVariant
)

func (r StructRole) String() string {
	switch r {
	case RoleLeaf:
		return "leaf"
	case RoleCollection:
		return "collection"
	case RoleRecord:
		return "record"
	case RoleVariant:
		return "variant"
	default:
		return "unknown"
	}
}

const flagHasRepetition = 0x1

// FieldRecord describes one node of the schema's field forest.
type FieldRecord struct {
	ID           uint32 // position of this record within its (header+extension) list
	FieldVersion uint32
	TypeVersion  uint32
	ParentFieldID uint32
	StructRole   StructRole
	Flags        uint16
	Repetition   uint64
	FieldName    string
	TypeName     string
	TypeAlias    string
	Description  string
}

// IsTopLevel reports whether this field is a direct child of the record's
// implicit root (its parent_field_id equals its own id).
func (f FieldRecord) IsTopLevel() bool { return f.ParentFieldID == f.ID }

// ReadFieldRecord parses one field record's fixed part plus its four
// length-prefixed strings. id is the record's position
// within the merged field list, assigned by the caller.
func ReadFieldRecord(c *Cursor, id uint32) (FieldRecord, error) {
	fieldVersion, err := c.ReadUint32()
	if err != nil {
		return FieldRecord{}, err
	}
	typeVersion, err := c.ReadUint32()
	if err != nil {
		return FieldRecord{}, err
	}
	parentFieldID, err := c.ReadUint32()
	if err != nil {
		return FieldRecord{}, err
	}
	structRole, err := c.ReadUint16()
	if err != nil {
		return FieldRecord{}, err
	}
	flags, err := c.ReadUint16()
	if err != nil {
		return FieldRecord{}, err
	}

	var repetition uint64
	if flags&flagHasRepetition != 0 {
		repetition, err = c.ReadUint64()
		if err != nil {
			return FieldRecord{}, err
		}
	}

	fieldName, err := c.ReadString()
	if err != nil {
		return FieldRecord{}, err
	}
	typeName, err := c.ReadString()
	if err != nil {
		return FieldRecord{}, err
	}
	typeAlias, err := c.ReadString()
	if err != nil {
		return FieldRecord{}, err
	}
	description, err := c.ReadString()
	if err != nil {
		return FieldRecord{}, err
	}

	return FieldRecord{
		ID:            id,
		FieldVersion:  fieldVersion,
		TypeVersion:   typeVersion,
		ParentFieldID: parentFieldID,
		StructRole:    StructRole(structRole),
		Flags:         flags,
		Repetition:    repetition,
		FieldName:     fieldName,
		TypeName:      typeName,
		TypeAlias:     typeAlias,
		Description:   description,
	}, nil
}

// ColumnRecord describes the physical storage of one column.
type ColumnRecord struct {
	ID      uint32 // position of this record within its (header+extension) list
	Type    format.ColumnType
	NBits   uint16
	FieldID uint32
	Flags   uint16
}

func ReadColumnRecord(c *Cursor, id uint32) (ColumnRecord, error) {
	typ, err := c.ReadUint16()
	if err != nil {
		return ColumnRecord{}, err
	}
	nbits, err := c.ReadUint16()
	if err != nil {
		return ColumnRecord{}, err
	}
	fieldID, err := c.ReadUint32()
	if err != nil {
		return ColumnRecord{}, err
	}
	flags, err := c.ReadUint16()
	if err != nil {
		return ColumnRecord{}, err
	}
	return ColumnRecord{
		ID:      id,
		Type:    format.ColumnType(typ),
		NBits:   nbits,
		FieldID: fieldID,
		Flags:   flags,
	}, nil
}

// AliasColumn maps a physical column onto an additional field.
type AliasColumn struct {
	PhysicalID uint32
	FieldID    uint32
}

func ReadAliasColumn(c *Cursor) (AliasColumn, error) {
	physicalID, err := c.ReadUint32()
	if err != nil {
		return AliasColumn{}, err
	}
	fieldID, err := c.ReadUint32()
	if err != nil {
		return AliasColumn{}, err
	}
	return AliasColumn{PhysicalID: physicalID, FieldID: fieldID}, nil
}

// ExtraTypeInfo carries out-of-band type metadata.
type ExtraTypeInfo struct {
	TypeVersionFrom uint32
	TypeVersionTo   uint32
	ContentID       uint32
	Content         string
}

func ReadExtraTypeInfo(c *Cursor) (ExtraTypeInfo, error) {
	from, err := c.ReadUint32()
	if err != nil {
		return ExtraTypeInfo{}, err
	}
	to, err := c.ReadUint32()
	if err != nil {
		return ExtraTypeInfo{}, err
	}
	contentID, err := c.ReadUint32()
	if err != nil {
		return ExtraTypeInfo{}, err
	}
	content, err := c.ReadString()
	if err != nil {
		return ExtraTypeInfo{}, err
	}
	return ExtraTypeInfo{
		TypeVersionFrom: from,
		TypeVersionTo:   to,
		ContentID:       contentID,
		Content:         content,
	}, nil
}

// ClusterSummary records one cluster's entry range.
type ClusterSummary struct {
	FirstEntry uint64
	NumEntries uint64
}

func ReadClusterSummary(c *Cursor) (ClusterSummary, error) {
	first, err := c.ReadUint64()
	if err != nil {
		return ClusterSummary{}, err
	}
	n, err := c.ReadUint64()
	if err != nil {
		return ClusterSummary{}, err
	}
	return ClusterSummary{FirstEntry: first, NumEntries: n}, nil
}

// ClusterGroup points at the page-list envelope covering NumClusters
// consecutive clusters.
type ClusterGroup struct {
	NumClusters   uint32
	PageListLink  EnvelopeLink
}

func ReadClusterGroup(c *Cursor) (ClusterGroup, error) {
	n, err := c.ReadUint32()
	if err != nil {
		return ClusterGroup{}, err
	}
	link, err := ReadEnvelopeLink(c)
	if err != nil {
		return ClusterGroup{}, err
	}
	return ClusterGroup{NumClusters: n, PageListLink: link}, nil
}

// PageDescriptor names one page's element count and its byte range. The
// sign bit of the on-disk element-count word is reserved by the writer to
// mean "page contains no checksum"; ReadPageDescriptor masks it off
// NumElements, so readers tolerate it without acting on it.
type PageDescriptor struct {
	NumElements uint32
	Locator     Locator
}

const pageNoChecksumBit = uint32(1) << 31

func ReadPageDescriptor(c *Cursor) (PageDescriptor, error) {
	raw, err := c.ReadUint32()
	if err != nil {
		return PageDescriptor{}, err
	}
	loc, err := ReadLocator(c)
	if err != nil {
		return PageDescriptor{}, err
	}
	return PageDescriptor{NumElements: raw &^ pageNoChecksumBit, Locator: loc}, nil
}

// HasNoChecksum reports whether raw, a page descriptor's undecoded
// element-count word, has the writer's no-checksum bit set. The receiver
// is not consulted: its NumElements already has that bit masked off.
func (p PageDescriptor) HasNoChecksum(raw uint32) bool {
	return raw&pageNoChecksumBit != 0
}

var errUnsupportedColumnArity = fmt.Errorf("%w: unsupported number of columns for a leaf field", FormatError)
