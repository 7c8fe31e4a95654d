package transform

import (
	"time"

	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/identity"
	"github.com/c360studio/frmr2oscal/oscal"
)

const (
	publisherName = "FedRAMP"
	publisherKey  = "fedramp"
	publisherRole = "publisher"
)

// buildMetadata assembles the metadata block shared by both documents:
// the publisher party, role binding, and the source release version. The
// timestamp is the only non-deterministic field in either document.
func buildMetadata(title string, info frmr.Info, now time.Time) oscal.Metadata {
	partyUUID := identity.Identifier(identity.TagParty, publisherKey)
	md := oscal.Metadata{
		Title:        title,
		LastModified: now.UTC().Format(time.RFC3339),
		Version:      info.Version,
		OSCALVersion: oscal.Version,
		Parties: []oscal.Party{
			{UUID: partyUUID, Type: "organization", Name: publisherName},
		},
		ResponsibleParties: []oscal.ResponsibleParty{
			{RoleID: publisherRole, PartyUUIDs: []string{partyUUID}},
		},
	}
	if info.LastUpdated != "" {
		md.Remarks = "Source last updated " + info.LastUpdated + "."
	}
	return md
}
