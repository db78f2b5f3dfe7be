package component

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/javajack/twbedit/xmldoc"
)

const dashboardsPath = "./dashboards/dashboard"

// ZonePrefix is the prefix of minted zone ids.
const ZonePrefix = "z"

// Default geometry of a newly placed zone.
const (
	DefaultZoneWidth  = 400
	DefaultZoneHeight = 300
)

// DashboardNames lists dashboards in document order.
func DashboardNames(root *etree.Element) []string {
	return names(root, dashboardsPath)
}

// FindDashboard returns the dashboard named name, or nil.
func FindDashboard(root *etree.Element, name string) *etree.Element {
	return findByName(root, dashboardsPath, name)
}

// EnsureDashboards returns the <dashboards> wrapper, creating it if absent.
func EnsureDashboards(root *etree.Element) *etree.Element {
	return ensureChild(root, "dashboards")
}

// Zones returns the top-level zones of a dashboard in stacking order.
// A dashboard without a <zones> element has none.
func Zones(dashboard *etree.Element) []*etree.Element {
	zones := dashboard.SelectElement("zones")
	if zones == nil {
		return nil
	}
	return zones.ChildElements()
}

// AllZones returns every zone of a dashboard, including zones nested in
// layout containers, in document order.
func AllZones(dashboard *etree.Element) []*etree.Element {
	zones := dashboard.SelectElement("zones")
	if zones == nil {
		return nil
	}
	return xmldoc.Find(zones, ".//zone")
}

// FindZone returns the zone with the given id at any nesting depth.
func FindZone(dashboard *etree.Element, id string) *etree.Element {
	for _, z := range AllZones(dashboard) {
		if v, ok := xmldoc.Attr(z, "id"); ok && v == id {
			return z
		}
	}
	return nil
}

// EnsureZones returns the dashboard's <zones> wrapper, creating it if absent.
func EnsureZones(dashboard *etree.Element) *etree.Element {
	return ensureChild(dashboard, "zones")
}

// DeviceLayouts returns the device-specific layouts of a dashboard.
func DeviceLayouts(dashboard *etree.Element) []*etree.Element {
	devices := dashboard.SelectElement("device-layouts")
	if devices == nil {
		return nil
	}
	return devices.ChildElements()
}

// ZonePlacement controls where a new zone is placed.
type ZonePlacement struct {
	Floating  bool
	Container string
	// Index is the position among the existing top-level zones. A negative
	// or out-of-range index appends.
	Index int
}

// AppendSheetZone places a worksheet zone with a fresh id and default
// geometry on the dashboard.
func AppendSheetZone(dashboard *etree.Element, sheet string, ids *xmldoc.Registry, at ZonePlacement) *etree.Element {
	parent := EnsureZones(dashboard)
	zone := xmldoc.NewElement("zone")
	zone.CreateAttr("type", "worksheet")
	zone.CreateAttr("worksheet", sheet)
	zone.CreateAttr("id", ids.New(ZonePrefix))
	if at.Floating {
		zone.CreateAttr("floating", "true")
	}
	if at.Container != "" {
		zone.CreateAttr("container", at.Container)
	}
	zone.CreateAttr("x", "0")
	zone.CreateAttr("y", "0")
	zone.CreateAttr("w", strconv.Itoa(DefaultZoneWidth))
	zone.CreateAttr("h", strconv.Itoa(DefaultZoneHeight))

	existing := parent.ChildElements()
	if at.Index >= 0 && at.Index < len(existing) {
		parent.InsertChildAt(existing[at.Index].Index(), zone)
	} else {
		parent.AddChild(zone)
	}
	return zone
}

// UpdateZoneGeometry sets the supplied coordinates and leaves nil ones as
// they are.
func UpdateZoneGeometry(zone *etree.Element, x, y, w, h *int) {
	for _, g := range []struct {
		key string
		v   *int
	}{{"x", x}, {"y", y}, {"w", w}, {"h", h}} {
		if g.v != nil {
			zone.CreateAttr(g.key, strconv.Itoa(*g.v))
		}
	}
}
