package git

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

var identityFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa", "id_dsa"}

// authFor picks credentials for url. Non-SSH remotes and SSH remotes without
// a readable unencrypted identity return nil so go-git uses its defaults.
func (c *Client) authFor(url string) (transport.AuthMethod, error) {
	if url == "" {
		return nil, nil
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if ep.Protocol != "ssh" {
		return nil, nil
	}

	user := ep.User
	if user == "" {
		user = "git"
	}
	for _, key := range c.identities() {
		auth, err := ssh.NewPublicKeysFromFile(user, key, "")
		if err == nil {
			return auth, nil
		}
	}
	return nil, nil
}

func (c *Client) identities() []string {
	dir := c.SSHDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, ".ssh")
	}

	var found []string
	for _, name := range identityFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			found = append(found, path)
		}
	}
	return found
}
