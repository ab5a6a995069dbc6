package websocket

// RoomKind distinguishes the two broadcast scopes: a whole group, or a
// single channel inside a group.
type RoomKind uint8

const (
	RoomGroup RoomKind = iota
	RoomChannel
)

// RoomKey identifies a broadcast room. Keys are always built through
// GroupRoom/ChannelRoom so the wire encoding lives in exactly one place;
// ad hoc string concatenation is what key-mismatch bugs are made of.
type RoomKey struct {
	Kind    RoomKind
	GroupID string
	Channel string
}

func GroupRoom(groupID string) RoomKey {
	return RoomKey{Kind: RoomGroup, GroupID: groupID}
}

func ChannelRoom(groupID, channel string) RoomKey {
	return RoomKey{Kind: RoomChannel, GroupID: groupID, Channel: channel}
}

// String renders the key for logs and outbound events. Channel rooms use
// '#' as separator, which is not a valid character in group ids.
func (k RoomKey) String() string {
	if k.Kind == RoomChannel {
		return k.GroupID + "#" + k.Channel
	}
	return k.GroupID
}
