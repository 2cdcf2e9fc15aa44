// Package gpio reads digital input lines through the Linux sysfs GPIO
// interface. It covers exactly what a polled encoder needs: open a line as
// an input, read its level fast, close it again.
package gpio

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const (
	baseDir      = "/sys/class/gpio"
	exportFile   = baseDir + "/export"
	unexportFile = baseDir + "/unexport"
)

// exportSettle is how long to wait for udev to fix up permissions on a
// freshly exported line before giving up.
const exportSettle = 2 * time.Second

// Pin is one exported GPIO line, configured as an input.
type Pin struct {
	number int
	value  *os.File
	buf    []byte
}

// Open exports a GPIO line (if not already exported), sets it as an input
// and opens its value file for polling.
func Open(number int) (*Pin, error) {
	if err := export(number); err != nil {
		return nil, fmt.Errorf("gpio%d: export: %w", number, err)
	}
	if err := writeAttr(number, "direction", "in"); err != nil {
		unexport(number)
		return nil, fmt.Errorf("gpio%d: set direction: %w", number, err)
	}
	f, err := os.OpenFile(valuePath(number), os.O_RDONLY, 0)
	if err != nil {
		unexport(number)
		return nil, fmt.Errorf("gpio%d: open value: %w", number, err)
	}
	return &Pin{number: number, value: f, buf: make([]byte, 1)}, nil
}

// Level returns the instantaneous line state. A read failure reports as
// low; encoder sampling treats an unreadable line as a quiet one.
func (p *Pin) Level() bool {
	if _, err := p.value.ReadAt(p.buf, 0); err != nil {
		return false
	}
	return p.buf[0] == '1'
}

// Number returns the line number the pin was opened with.
func (p *Pin) Number() int { return p.number }

// Close releases the value file and unexports the line.
func (p *Pin) Close() error {
	err := p.value.Close()
	if uerr := unexport(p.number); err == nil {
		err = uerr
	}
	return err
}

func valuePath(number int) string {
	return fmt.Sprintf("%s/gpio%d/value", baseDir, number)
}

// export makes the line visible under sysfs. Already-exported lines are
// detected by probing the value file. After a fresh export we wait for the
// value file to become readable, since udev re-chowns the files
// asynchronously when not running as root.
func export(number int) error {
	path := valuePath(number)
	if unix.Access(path, unix.R_OK) == nil {
		return nil
	}
	if err := writeFile(exportFile, fmt.Sprintf("%d", number)); err != nil {
		return err
	}
	deadline := time.Now().Add(exportSettle)
	for time.Now().Before(deadline) {
		if unix.Access(path, unix.R_OK) == nil {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return fmt.Errorf("%s: not readable after export", path)
}

func unexport(number int) error {
	return writeFile(unexportFile, fmt.Sprintf("%d", number))
}

func writeAttr(number int, attr, value string) error {
	return writeFile(fmt.Sprintf("%s/gpio%d/%s", baseDir, number, attr), value)
}

func writeFile(path, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(s))
	return err
}
