package directory

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// Policy is the ownership, permission and ACL policy applied to deployed paths.
type Policy struct {
	User         string
	Group        string
	UID          int
	GID          int
	DirPerms     os.FileMode
	FilePerms    os.FileMode
	SymlinkPerms os.FileMode
	DirACLs      []string
	FileACLs     []string
}

// IdentityLookup resolves user and group names to numeric ids.
type IdentityLookup interface {
	UserID(name string) (int, error)
	GroupID(name string) (int, error)
}

// OSIdentityLookup resolves names through the host's user database.
type OSIdentityLookup struct{}

// UserID returns the uid of the named user.
func (OSIdentityLookup) UserID(name string) (int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, fmt.Errorf(messages.DirectoryLookupUserFmt, name, err)
	}
	return strconv.Atoi(u.Uid)
}

// GroupID returns the gid of the named group.
func (OSIdentityLookup) GroupID(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, fmt.Errorf(messages.DirectoryLookupGroupFmt, name, err)
	}
	return strconv.Atoi(g.Gid)
}

// PolicyFromDeployment derives the policy from a deployment.
// Numeric pki_uid / pki_gid win over the pki_user / pki_group names.
func PolicyFromDeployment(d *config.Deployment, lookup IdentityLookup) (Policy, error) {
	if lookup == nil {
		lookup = OSIdentityLookup{}
	}
	p := Policy{
		User:         d.User,
		Group:        d.Group,
		DirPerms:     d.DirPerms,
		FilePerms:    d.FilePerms,
		SymlinkPerms: d.SymlinkPerms,
		DirACLs:      append([]string(nil), d.DirACLs...),
		FileACLs:     append([]string(nil), d.FileACLs...),
	}
	var err error
	if p.UID, err = resolveID(d.UID, d.User, lookup.UserID); err != nil {
		return Policy{}, err
	}
	if p.GID, err = resolveID(d.GID, d.Group, lookup.GroupID); err != nil {
		return Policy{}, err
	}
	if d.UID != "" {
		p.User = ""
	}
	if d.GID != "" {
		p.Group = ""
	}
	return p, nil
}

func resolveID(numeric string, name string, lookup func(string) (int, error)) (int, error) {
	if numeric != "" {
		id, err := strconv.Atoi(numeric)
		if err != nil {
			return 0, fmt.Errorf(messages.ConfigInvalidIDFmt, numeric, err)
		}
		return id, nil
	}
	return lookup(name)
}

// Owner renders the policy owner as user:group, falling back to numeric ids.
func (p Policy) Owner() string {
	u := p.User
	if u == "" {
		u = strconv.Itoa(p.UID)
	}
	g := p.Group
	if g == "" {
		g = strconv.Itoa(p.GID)
	}
	return u + ":" + g
}
