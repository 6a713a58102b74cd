package records

import (
	"strconv"

	"github.com/wstrucke/scs/errs"
)

// System is the (name, build, ip, location, environment, virtual,
// backing_image, overlay, locked, build_date_unix) entity — a configured
// host, physical or virtual.
type System struct {
	Name          string
	Build         string
	IP            string // dotted-quad or "dhcp"
	Location      string
	Environment   string
	Virtual       bool
	BackingImage  bool
	Overlay       string // another system's name, "auto", or empty (single)
	Locked        bool
	BuildDateUnix int64
}

func (s *System) Key() string { return s.Name }

func (s *System) ToFields() []string {
	return []string{
		s.Name, s.Build, s.IP, s.Location, s.Environment,
		boolField(s.Virtual), boolField(s.BackingImage), s.Overlay,
		boolField(s.Locked), strconv.FormatInt(s.BuildDateUnix, 10),
	}
}

func (s *System) FromFields(f []string) error {
	if err := expectFields("system", f, 10); err != nil {
		return err
	}
	s.Name, s.Build, s.IP, s.Location, s.Environment = f[0], f[1], f[2], f[3], f[4]
	var err error
	if s.Virtual, err = parseYN("virtual", f[5]); err != nil {
		return err
	}
	if s.BackingImage, err = parseYN("backing_image", f[6]); err != nil {
		return err
	}
	s.Overlay = f[7]
	if s.Locked, err = parseYN("locked", f[8]); err != nil {
		return err
	}
	if f[9] == "" {
		s.BuildDateUnix = 0
	} else if s.BuildDateUnix, err = strconv.ParseInt(f[9], 10, 64); err != nil {
		return errs.Validationf("system %s: build_date_unix not an integer: %q", s.Name, f[9])
	}
	return nil
}

func (s *System) Validate() error {
	if s.Name == "" {
		return errs.Validationf("system: name is required")
	}
	if s.BackingImage && !s.Virtual {
		return errs.Validationf("system %s: backing_image requires virtual=y", s.Name)
	}
	if s.Overlay != "" && s.BackingImage {
		return errs.Validationf("system %s: cannot be both an overlay and a backing image", s.Name)
	}
	return nil
}

// Kind classifies a virtual system as single, backing, or overlay (§3).
type Kind string

const (
	KindPhysical Kind = "physical"
	KindSingle   Kind = "single"
	KindBacking  Kind = "backing"
	KindOverlay  Kind = "overlay"
)

// Kind derives the system's lifecycle kind from Virtual/BackingImage/Overlay.
func (s *System) Kind() Kind {
	if !s.Virtual {
		return KindPhysical
	}
	if s.BackingImage {
		return KindBacking
	}
	if s.Overlay != "" {
		return KindOverlay
	}
	return KindSingle
}

// OverlayAuto reports whether Overlay is the literal "auto" sentinel.
func (s *System) OverlayAuto() bool { return s.Overlay == "auto" }

// IPIsDHCP reports whether IP is the "dhcp" sentinel rather than a dotted quad.
func (s *System) IPIsDHCP() bool { return s.IP == "dhcp" }
