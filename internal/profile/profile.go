package profile

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
)

const (
	appDir   = "iclass_tui"
	fileName = "profile.gob"
)

// Profile is what "remember me" keeps between runs. The session token is
// deliberately absent: a session never outlives the process.
type Profile struct {
	StudentID string
	Year      int
	Month     int
	Day       int
}

// Dir is the directory profiles are stored in. Tests point it elsewhere.
var Dir = func() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

func path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func Save(p Profile) error {
	filePath, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(p)
}

func Load() (Profile, error) {
	filePath, err := path()
	if err != nil {
		return Profile{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Profile{}, err
	}
	defer file.Close()

	var p Profile
	err = gob.NewDecoder(file).Decode(&p)
	return p, err
}

// Delete removes the stored profile. A missing profile is not an error.
func Delete() error {
	filePath, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
