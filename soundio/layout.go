package soundio

import (
	"slices"
	"strconv"
	"strings"
)

// MaxChannels is the largest channel count a layout may have.
const MaxChannels = 24

// ChannelID specifies where a channel is physically located.
type ChannelID int

const (
	ChannelInvalid ChannelID = iota

	ChannelFrontLeft // First of the more commonly supported ids.
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLfe
	ChannelBackLeft
	ChannelBackRight
	ChannelFrontLeftCenter
	ChannelFrontRightCenter
	ChannelBackCenter
	ChannelSideLeft
	ChannelSideRight
	ChannelTopCenter
	ChannelTopFrontLeft
	ChannelTopFrontCenter
	ChannelTopFrontRight
	ChannelTopBackLeft
	ChannelTopBackCenter
	ChannelTopBackRight // Last of the more commonly supported ids.

	ChannelBackLeftCenter // First of the less commonly supported ids.
	ChannelBackRightCenter
	ChannelFrontLeftWide
	ChannelFrontRightWide
	ChannelFrontLeftHigh
	ChannelFrontCenterHigh
	ChannelFrontRightHigh
	ChannelTopFrontLeftCenter
	ChannelTopFrontRightCenter
	ChannelTopSideLeft
	ChannelTopSideRight
	ChannelLeftLfe
	ChannelRightLfe
	ChannelLfe2
	ChannelBottomCenter
	ChannelBottomLeftCenter
	ChannelBottomRightCenter

	// Mid/side recording
	ChannelMsMid
	ChannelMsSide

	// first order ambisonic channels
	ChannelAmbisonicW
	ChannelAmbisonicX
	ChannelAmbisonicY
	ChannelAmbisonicZ

	// X-Y Recording
	ChannelXyX
	ChannelXyY

	ChannelHeadphonesLeft // First of the "other" channel ids
	ChannelHeadphonesRight
	ChannelClickTrack
	ChannelForeignLanguage
	ChannelHearingImpaired
	ChannelNarration
	ChannelHaptic
	ChannelDialogCentricMix // Last of the "other" channel ids

	ChannelAux
	ChannelAux0
	ChannelAux1
	ChannelAux2
	ChannelAux3
	ChannelAux4
	ChannelAux5
	ChannelAux6
	ChannelAux7
	ChannelAux8
	ChannelAux9
	ChannelAux10
	ChannelAux11
	ChannelAux12
	ChannelAux13
	ChannelAux14
	ChannelAux15
)

var channelNames = map[ChannelID]string{
	ChannelFrontLeft:        "Front Left",
	ChannelFrontRight:       "Front Right",
	ChannelFrontCenter:      "Front Center",
	ChannelLfe:              "LFE",
	ChannelBackLeft:         "Back Left",
	ChannelBackRight:        "Back Right",
	ChannelFrontLeftCenter:  "Front Left Center",
	ChannelFrontRightCenter: "Front Right Center",
	ChannelBackCenter:       "Back Center",
	ChannelSideLeft:         "Side Left",
	ChannelSideRight:        "Side Right",
	ChannelTopCenter:        "Top Center",
	ChannelTopFrontLeft:     "Top Front Left",
	ChannelTopFrontCenter:   "Top Front Center",
	ChannelTopFrontRight:    "Top Front Right",
	ChannelTopBackLeft:      "Top Back Left",
	ChannelTopBackCenter:    "Top Back Center",
	ChannelTopBackRight:     "Top Back Right",
	ChannelHeadphonesLeft:   "Headphones Left",
	ChannelHeadphonesRight:  "Headphones Right",
	ChannelMsMid:            "Mid/Side Mid",
	ChannelMsSide:           "Mid/Side Side",
	ChannelAux:              "AUX",
}

func (c ChannelID) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	if c >= ChannelAux0 && c <= ChannelAux15 {
		return "AUX" + strconv.Itoa(int(c-ChannelAux0))
	}
	if c <= ChannelInvalid || c > ChannelAux15 {
		return "(Invalid Channel)"
	}
	return "Channel " + strconv.Itoa(int(c))
}

// ChannelLayout is an ordered list of channel positions.
type ChannelLayout struct {
	// Name is set for builtin layouts, mostly useful when listing them.
	Name     string
	Channels []ChannelID
}

func (l ChannelLayout) ChannelCount() int {
	return len(l.Channels)
}

// Equal reports whether both layouts have the same channels in the same
// order. Names are ignored.
func (l ChannelLayout) Equal(other ChannelLayout) bool {
	return slices.Equal(l.Channels, other.Channels)
}

// FindChannel returns the index of channel in the layout, or -1.
func (l ChannelLayout) FindChannel(channel ChannelID) int {
	return slices.Index(l.Channels, channel)
}

// DetectBuiltin sets Name if the layout matches a builtin one and reports
// whether it did.
func (l *ChannelLayout) DetectBuiltin() bool {
	for _, b := range builtinLayouts {
		if l.Equal(b) {
			l.Name = b.Name
			return true
		}
	}
	return false
}

func (l ChannelLayout) String() string {
	if l.Name != "" {
		return l.Name
	}
	names := make([]string, len(l.Channels))
	for i, c := range l.Channels {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func (l ChannelLayout) clone() ChannelLayout {
	return ChannelLayout{Name: l.Name, Channels: slices.Clone(l.Channels)}
}

// ChannelLayoutID names one of the builtin layouts.
type ChannelLayoutID int

const (
	LayoutMono ChannelLayoutID = iota
	LayoutStereo
	Layout2Point1
	Layout3Point0
	Layout3Point0Back
	Layout3Point1
	Layout4Point0
	LayoutQuad
	LayoutQuadSide
	Layout4Point1
	Layout5Point0Back
	Layout5Point0Side
	Layout5Point1
	Layout5Point1Back
	Layout6Point0Side
	Layout6Point0Front
	LayoutHexagonal
	Layout6Point1
	Layout6Point1Back
	Layout6Point1Front
	Layout7Point0
	Layout7Point0Front
	Layout7Point1
	Layout7Point1Wide
	Layout7Point1WideBack
	LayoutOctagonal
)

const (
	fl  = ChannelFrontLeft
	fr  = ChannelFrontRight
	fc  = ChannelFrontCenter
	lfe = ChannelLfe
	bl  = ChannelBackLeft
	br  = ChannelBackRight
	flc = ChannelFrontLeftCenter
	frc = ChannelFrontRightCenter
	bc  = ChannelBackCenter
	sl  = ChannelSideLeft
	sr  = ChannelSideRight
)

var builtinLayouts = [...]ChannelLayout{
	LayoutMono:            {"Mono", []ChannelID{fc}},
	LayoutStereo:          {"Stereo", []ChannelID{fl, fr}},
	Layout2Point1:         {"2.1", []ChannelID{fl, fr, lfe}},
	Layout3Point0:         {"3.0", []ChannelID{fl, fr, fc}},
	Layout3Point0Back:     {"3.0 (back)", []ChannelID{fl, fr, bc}},
	Layout3Point1:         {"3.1", []ChannelID{fl, fr, fc, lfe}},
	Layout4Point0:         {"4.0", []ChannelID{fl, fr, fc, bc}},
	LayoutQuad:            {"Quad", []ChannelID{fl, fr, bl, br}},
	LayoutQuadSide:        {"Quad (side)", []ChannelID{fl, fr, sl, sr}},
	Layout4Point1:         {"4.1", []ChannelID{fl, fr, fc, bc, lfe}},
	Layout5Point0Back:     {"5.0 (back)", []ChannelID{fl, fr, fc, bl, br}},
	Layout5Point0Side:     {"5.0 (side)", []ChannelID{fl, fr, fc, sl, sr}},
	Layout5Point1:         {"5.1", []ChannelID{fl, fr, fc, sl, sr, lfe}},
	Layout5Point1Back:     {"5.1 (back)", []ChannelID{fl, fr, fc, bl, br, lfe}},
	Layout6Point0Side:     {"6.0 (side)", []ChannelID{fl, fr, fc, sl, sr, bc}},
	Layout6Point0Front:    {"6.0 (front)", []ChannelID{fl, fr, sl, sr, flc, frc}},
	LayoutHexagonal:       {"Hexagonal", []ChannelID{fl, fr, fc, bl, br, bc}},
	Layout6Point1:         {"6.1", []ChannelID{fl, fr, fc, sl, sr, bc, lfe}},
	Layout6Point1Back:     {"6.1 (back)", []ChannelID{fl, fr, fc, bl, br, bc, lfe}},
	Layout6Point1Front:    {"6.1 (front)", []ChannelID{fl, fr, sl, sr, flc, frc, lfe}},
	Layout7Point0:         {"7.0", []ChannelID{fl, fr, fc, sl, sr, bl, br}},
	Layout7Point0Front:    {"7.0 (front)", []ChannelID{fl, fr, fc, sl, sr, flc, frc}},
	Layout7Point1:         {"7.1", []ChannelID{fl, fr, fc, sl, sr, bl, br, lfe}},
	Layout7Point1Wide:     {"7.1 (wide)", []ChannelID{fl, fr, fc, sl, sr, flc, frc, lfe}},
	Layout7Point1WideBack: {"7.1 (wide) (back)", []ChannelID{fl, fr, fc, bl, br, flc, frc, lfe}},
	LayoutOctagonal:       {"Octagonal", []ChannelID{fl, fr, fc, sl, sr, bl, br, bc}},
}

// BuiltinLayouts returns a copy of every builtin layout.
func BuiltinLayouts() []ChannelLayout {
	layouts := make([]ChannelLayout, len(builtinLayouts))
	for i, l := range builtinLayouts {
		layouts[i] = l.clone()
	}
	return layouts
}

// BuiltinLayout returns the builtin layout id. It panics on an unknown id.
func BuiltinLayout(id ChannelLayoutID) ChannelLayout {
	if id < 0 || int(id) >= len(builtinLayouts) {
		panic("soundio: unknown channel layout id")
	}
	return builtinLayouts[id].clone()
}

// DefaultLayout returns the default layout for a channel count. The second
// result is false when no default exists for that count.
func DefaultLayout(channelCount int) (ChannelLayout, bool) {
	var id ChannelLayoutID
	switch channelCount {
	case 1:
		id = LayoutMono
	case 2:
		id = LayoutStereo
	case 3:
		id = Layout3Point0
	case 4:
		id = Layout4Point0
	case 5:
		id = Layout5Point0Back
	case 6:
		id = Layout5Point1Back
	case 7:
		id = Layout6Point1
	case 8:
		id = Layout7Point1
	default:
		return ChannelLayout{}, false
	}
	return BuiltinLayout(id), true
}

// BestMatchingLayout returns the first layout in preferred that also appears
// in available.
func BestMatchingLayout(preferred, available []ChannelLayout) (ChannelLayout, bool) {
	for _, p := range preferred {
		for _, a := range available {
			if p.Equal(a) {
				return p.clone(), true
			}
		}
	}
	return ChannelLayout{}, false
}

// SortLayouts sorts layouts by channel count, descending. The sort is stable.
func SortLayouts(layouts []ChannelLayout) {
	slices.SortStableFunc(layouts, func(a, b ChannelLayout) int {
		return b.ChannelCount() - a.ChannelCount()
	})
}
