package config

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// These files live in Database.PassDir. The .pgpass.new file holds
// passwords which are being renewed and replaces .pgpass once the
// ALTER ROLE transaction commits.
const (
	passFile    = ".pgpass"
	newPassFile = ".pgpass.new"
)

var errNoPassword = errors.New("no matching password line")

// lookupPassword returns the password of the first line of the path
// pgpass file which starts with the host:port:dbname:role: key.
// Blank and #-commented lines are skipped.
func lookupPassword(path, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if pass, ok := bytes.CutPrefix(line, []byte(key)); ok && len(pass) > 0 {
			return string(pass), nil
		}
	}
	return "", errNoPassword
}

// randomPassword returns 128 random bits in the unpadded base64 form,
// so it never contains the : separator of pgpass lines.
func randomPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

func passPath(dir, name string) string {
	return filepath.Join(dir, name)
}
