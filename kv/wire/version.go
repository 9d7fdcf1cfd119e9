package wire

import "fmt"

// versionSize is the fixed wire width of a present Version, excluding the
// presence byte.
const versionSize = 4 + 8 + 4

// Version identifies and totally orders the versions of a distributed
// transaction. Topology orders cluster epochs, Order is the per-epoch
// sequence, NodeOrder breaks ties between originating nodes.
type Version struct {
	Topology  int32
	Order     int64
	NodeOrder int32
}

// IsZero reports whether v is the absent version.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or 1 ordering v against o.
func (v Version) Compare(o Version) int {
	if v.Topology != o.Topology {
		if v.Topology < o.Topology {
			return -1
		}
		return 1
	}
	if v.Order != o.Order {
		if v.Order < o.Order {
			return -1
		}
		return 1
	}
	if v.NodeOrder != o.NodeOrder {
		if v.NodeOrder < o.NodeOrder {
			return -1
		}
		return 1
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("Version{topology=%d, order=%d, nodeOrder=%d}", v.Topology, v.Order, v.NodeOrder)
}
