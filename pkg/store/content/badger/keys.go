package badger

import (
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so we use prefixed keys to organize the
// wiki's data types into logical namespaces. This design:
//   - Prevents key collisions between data types
//   - Enables efficient range scans (children of a directory, revisions of
//     an entity, tally rows of the whole wiki)
//   - Makes the database structure self-documenting
//
// Entities are identified by UUID v4, which stays stable across renames;
// only the derived path indexes move.
//
// Key Namespace Prefixes:
//
// Data Type            Prefix  Key Format                          Value
// =========================================================================
// Directory            "d:"    d:<uuid>                            Directory (JSON)
// Directory path index "dp:"   dp:<path>                           dirUUID (bytes)
// Directory children   "dc:"   dc:<parentUUID>:<slug>              childUUID (bytes)
// Page                 "pg:"   pg:<uuid>                           Page (JSON)
// Page slug index      "sl:"   sl:<slug>                           pageUUID (bytes)
// Page-in-dir index    "pc:"   pc:<dirUUID>:<slug>                 pageUUID (bytes)
// Path redirect        "r:"    r:<oldPath>                         SlugRedirect (JSON)
// Slug redirect        "rs:"   rs:<oldSlug>                        SlugRedirect (JSON)
// Revision             "rev:"  rev:<kind>:<uuid>:<seq, 8B BE>      Revision (JSON)
// Grant                "g:"    g:<kind>:<uuid>:<subj>:<subjUUID>   level (1 byte)
// User                 "u:"    u:<uuid>                            User (JSON)
// Group                "grp:"  grp:<uuid>                          Group (JSON)
// System owner         "cfg:"  cfg:system-owner                    ownerUUID (bytes)
// View tally           "t:"    t:<pageUUID>:<tallyUUID>            count (8B BE)
// Page link            "ln:"   ln:<fromUUID>:<toUUID>              empty
// Backlink index       "bl:"   bl:<toUUID>:<fromUUID>              empty
// Attachment           "att:"  att:<pageUUID>:<attUUID>            Attachment (JSON)
//
// Revision keys embed the sequence number big-endian so a prefix scan
// yields revisions in sequence order; reverse iteration gives newest
// first. Tally keys nest the page UUID so aggregation can group by page
// within a single ordered scan.

const (
	prefixDirectory     = "d:"
	prefixDirectoryPath = "dp:"
	prefixDirChild      = "dc:"
	prefixPage          = "pg:"
	prefixPageSlug      = "sl:"
	prefixPageInDir     = "pc:"
	prefixRedirect      = "r:"
	prefixSlugRedirect  = "rs:"
	prefixRevision      = "rev:"
	prefixGrant         = "g:"
	prefixUser          = "u:"
	prefixGroup         = "grp:"
	prefixConfig        = "cfg:"
	prefixTally         = "t:"
	prefixLink          = "ln:"
	prefixBacklink      = "bl:"
	prefixAttachment    = "att:"
)

func keyDirectory(id uuid.UUID) []byte {
	return []byte(prefixDirectory + id.String())
}

func keyDirectoryPath(path string) []byte {
	return []byte(prefixDirectoryPath + path)
}

func keyDirChild(parentID uuid.UUID, slug string) []byte {
	return []byte(prefixDirChild + parentID.String() + ":" + slug)
}

func keyDirChildPrefix(parentID uuid.UUID) []byte {
	return []byte(prefixDirChild + parentID.String() + ":")
}

func keyPage(id uuid.UUID) []byte {
	return []byte(prefixPage + id.String())
}

func keyPageSlug(slug string) []byte {
	return []byte(prefixPageSlug + slug)
}

func keyPageInDir(dirID uuid.UUID, slug string) []byte {
	return []byte(prefixPageInDir + dirID.String() + ":" + slug)
}

func keyPageInDirPrefix(dirID uuid.UUID) []byte {
	return []byte(prefixPageInDir + dirID.String() + ":")
}

func keyRedirect(oldPath string) []byte {
	return []byte(prefixRedirect + oldPath)
}

func keySlugRedirect(oldSlug string) []byte {
	return []byte(prefixSlugRedirect + oldSlug)
}

func keyRevision(entity content.TargetRef, seq uint64) []byte {
	key := append(keyRevisionPrefix(entity), make([]byte, 8)...)
	putUint64(key[len(key)-8:], seq)
	return key
}

func keyRevisionPrefix(entity content.TargetRef) []byte {
	return []byte(prefixRevision + string(entity.Kind) + ":" + entity.ID.String() + ":")
}

func keyGrant(target content.TargetRef, subject content.Subject) []byte {
	return append(keyGrantPrefix(target), []byte(string(subject.Kind)+":"+subject.ID.String())...)
}

func keyGrantPrefix(target content.TargetRef) []byte {
	return []byte(prefixGrant + string(target.Kind) + ":" + target.ID.String() + ":")
}

func keyUser(id uuid.UUID) []byte {
	return []byte(prefixUser + id.String())
}

func keyGroup(id uuid.UUID) []byte {
	return []byte(prefixGroup + id.String())
}

func keySystemOwner() []byte {
	return []byte(prefixConfig + "system-owner")
}

func keyTally(pageID, tallyID uuid.UUID) []byte {
	return []byte(prefixTally + pageID.String() + ":" + tallyID.String())
}

func keyTallyPrefix() []byte {
	return []byte(prefixTally)
}

func keyLink(from, to uuid.UUID) []byte {
	return []byte(prefixLink + from.String() + ":" + to.String())
}

func keyLinkPrefix(from uuid.UUID) []byte {
	return []byte(prefixLink + from.String() + ":")
}

func keyBacklink(to, from uuid.UUID) []byte {
	return []byte(prefixBacklink + to.String() + ":" + from.String())
}

func keyBacklinkPrefix(to uuid.UUID) []byte {
	return []byte(prefixBacklink + to.String() + ":")
}

func keyAttachment(pageID, attID uuid.UUID) []byte {
	return []byte(prefixAttachment + pageID.String() + ":" + attID.String())
}

func keyAttachmentPrefix(pageID uuid.UUID) []byte {
	return []byte(prefixAttachment + pageID.String() + ":")
}
