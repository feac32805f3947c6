package wabinary

import (
	"strconv"
	"strings"
)

// Server names that select a non-default JID domain
const (
	DefaultUserServer = "s.whatsapp.net"
	LIDServer         = "lid"
	HostedServer      = "hosted"
	HostedLIDServer   = "hosted.lid"
)

// Domain types carried by AD_JID addresses
const (
	DomainWhatsApp  uint8 = 0
	DomainLID       uint8 = 1
	DomainHosted    uint8 = 128
	DomainHostedLID uint8 = 129
)

// ParseJID decodes an address of the form user[_agent][:device]@server.
// It reports false for strings without an '@' or with a device that is not
// a number in 0..255.
func ParseJID(s string) (JID, bool) {
	user, server, ok := strings.Cut(s, "@")
	if !ok {
		return JID{}, false
	}

	jid := JID{Server: server}

	user, device, hasDevice := strings.Cut(user, ":")
	if hasDevice {
		// A trailing ':' carries no device
		if device != "" {
			d, err := strconv.ParseUint(device, 10, 8)
			if err != nil {
				return JID{}, false
			}
			dev := uint8(d)
			jid.Device = &dev
		}
	}
	jid.User, _, _ = strings.Cut(user, "_")

	var domain uint8
	switch server {
	case LIDServer:
		domain = DomainLID
	case HostedServer:
		domain = DomainHosted
	case HostedLIDServer:
		domain = DomainHostedLID
	default:
		domain = DomainWhatsApp
	}
	jid.DomainType = &domain

	return jid, true
}

// String renders the JID back to its textual form
func (j JID) String() string {
	var sb strings.Builder
	sb.WriteString(j.User)
	if j.Device != nil {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(*j.Device)))
	}
	sb.WriteByte('@')
	sb.WriteString(j.Server)
	return sb.String()
}
