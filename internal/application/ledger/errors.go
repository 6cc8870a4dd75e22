package ledger

import "github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"

// ErrPartyNotFound is returned when a document references a party that does
// not exist for the tenant. The document write is never undone because of it.
var ErrPartyNotFound = shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
