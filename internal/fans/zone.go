package fans

import (
	"fmt"
	"strings"
)

// FanZone is a group of fans the BMC drives with a single duty cycle
type FanZone int

const (
	ZoneCpu        FanZone = 0
	ZonePeripheral FanZone = 1
)

var Zones = []FanZone{ZoneCpu, ZonePeripheral}

func (z FanZone) String() string {
	switch z {
	case ZoneCpu:
		return "cpu"
	case ZonePeripheral:
		return "peripheral"
	default:
		return fmt.Sprintf("zone%d", int(z))
	}
}

// ParseFanZone accepts the zone name ("cpu", "peripheral") or its numeric value
func ParseFanZone(s string) (FanZone, error) {
	for _, zone := range Zones {
		if strings.EqualFold(s, zone.String()) || s == fmt.Sprint(int(zone)) {
			return zone, nil
		}
	}
	return 0, fmt.Errorf("unknown fan zone: %s", s)
}

// ZoneMapping maps a FanZone to the zone byte understood by the BMC
type ZoneMapping map[FanZone]uint8

func DefaultZoneMapping() ZoneMapping {
	return ZoneMapping{
		ZoneCpu:        0x00,
		ZonePeripheral: 0x01,
	}
}

func (m ZoneMapping) ZoneByte(zone FanZone) uint8 {
	if b, ok := m[zone]; ok {
		return b
	}
	return uint8(zone)
}
