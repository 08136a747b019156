package parser

import (
	"encoding/xml"

	"sanctions-sync/internal/domain/entity"
)

// SDNNamespace is the default namespace of the OFAC sdn.xml document.
const SDNNamespace = "http://tempuri.org/sdnList.xsd"

var (
	sdnEntryName = xml.Name{Space: SDNNamespace, Local: "sdnEntry"}
	sdnUID       = xml.Name{Space: SDNNamespace, Local: "uid"}
	sdnFirstName = xml.Name{Space: SDNNamespace, Local: "firstName"}
	sdnLastName  = xml.Name{Space: SDNNamespace, Local: "lastName"}
)

// ParseSDN extracts every sdnEntry element of an OFAC SDN document.
//
// Field text is taken as published, without trimming. A nil document yields
// ErrNoData and a malformed one ErrMalformedXML; in both cases the returned
// slice is empty and non-nil.
func ParseSDN(data []byte) ([]entity.SdnEntry, error) {
	if data == nil {
		return []entity.SdnEntry{}, ErrNoData
	}

	opts := walkOptions{
		match:       func(n xml.Name) bool { return n == sdnEntryName },
		includeRoot: true,
	}
	found, err := walk(data, opts)
	if err != nil {
		return []entity.SdnEntry{}, err
	}

	entries := make([]entity.SdnEntry, 0, len(found))
	for _, el := range found {
		entries = append(entries, entity.SdnEntry{
			UID:       el.childText(sdnUID),
			FirstName: el.childText(sdnFirstName),
			LastName:  el.childText(sdnLastName),
		})
	}
	return entries, nil
}
