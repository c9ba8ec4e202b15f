package ply

import "slices"

// Diagnostics accumulates the fatal errors and non-fatal warnings raised by a
// reading or writing session. Every failing operation appends exactly one error
// and returns it.
type Diagnostics struct {
	errors   []string
	warnings []string
}

func (d *Diagnostics) HasError() bool {
	return len(d.errors) > 0
}

func (d *Diagnostics) Errors() []string {
	return slices.Clone(d.errors)
}

func (d *Diagnostics) HasWarning() bool {
	return len(d.warnings) > 0
}

func (d *Diagnostics) Warnings() []string {
	return slices.Clone(d.warnings)
}

func (d *Diagnostics) fail(err error) error {
	d.errors = append(d.errors, err.Error())
	return err
}

func (d *Diagnostics) warn(msg string) {
	d.warnings = append(d.warnings, msg)
}

// Reset clears both lists.
func (d *Diagnostics) Reset() {
	d.errors = nil
	d.warnings = nil
}
