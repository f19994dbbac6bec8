package scm

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPProbe probes a checkout that lives on a remote node.
type SFTPProbe struct {
	head   Head
	root   string
	client *sftp.Client
}

func NewSFTPProbe(head Head, client *sftp.Client, root string) *SFTPProbe {
	return &SFTPProbe{head: head, root: root, client: client}
}

func (p *SFTPProbe) Head() Head {
	return p.head
}

func (p *SFTPProbe) Stat(name string) (Stat, error) {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return Stat{}, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	info, err := p.client.Stat(path.Join(p.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stat{}, nil
		}
		return Stat{}, err
	}
	return Stat{Exists: true, IsDir: info.IsDir()}, nil
}

// SFTPConnection bundles the SSH transport with the SFTP session on top of
// it so both are closed together.
type SFTPConnection struct {
	SSH  *ssh.Client
	SFTP *sftp.Client
}

func (c *SFTPConnection) Close() error {
	return errors.Join(c.SFTP.Close(), c.SSH.Close())
}

func DialSFTP(hostname, username string, privateKey []byte) (*SFTPConnection, error) {
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	cc := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	if !strings.Contains(hostname, ":") {
		hostname += ":22"
	}
	client, err := ssh.Dial("tcp", hostname, cc)
	if err != nil {
		return nil, err
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &SFTPConnection{SSH: client, SFTP: sftpClient}, nil
}
