package snmp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/newtron-network/newtscrape/pkg/config"
)

// configure applies opts to a fresh handler aimed at target.
func configure(client gosnmp.Handler, target string, opts config.SNMPOptions) error {
	client.SetTarget(target)
	client.SetPort(uint16(opts.Port))
	client.SetRetries(opts.Retries)
	client.SetTimeout(time.Duration(opts.TimeoutSeconds) * time.Second)
	client.SetMaxRepetitions(uint32(opts.MaxRepetitions))

	switch ver := parseSNMPVersion(opts.Version); ver {
	case gosnmp.Version1, gosnmp.Version2c:
		client.SetCommunity(opts.Community)
		client.SetVersion(ver)
	case gosnmp.Version3:
		if opts.User.Name == "" {
			return errors.New("username is required for SNMPv3")
		}
		client.SetVersion(gosnmp.Version3)
		client.SetSecurityModel(gosnmp.UserSecurityModel)
		client.SetMsgFlags(parseSNMPv3SecurityLevel(opts.User.SecurityLevel))
		client.SetSecurityParameters(&gosnmp.UsmSecurityParameters{
			UserName:                 opts.User.Name,
			AuthenticationProtocol:   parseSNMPv3AuthProtocol(opts.User.AuthProto),
			AuthenticationPassphrase: opts.User.AuthKey,
			PrivacyProtocol:          parseSNMPv3PrivProtocol(opts.User.PrivProto),
			PrivacyPassphrase:        opts.User.PrivKey,
		})
	default:
		return fmt.Errorf("invalid SNMP version: %s", opts.Version)
	}
	return nil
}

func parseSNMPVersion(version string) gosnmp.SnmpVersion {
	switch version {
	case "0", "1":
		return gosnmp.Version1
	case "2", "2c", "":
		return gosnmp.Version2c
	case "3":
		return gosnmp.Version3
	default:
		return 0xff
	}
}

func parseSNMPv3SecurityLevel(level string) gosnmp.SnmpV3MsgFlags {
	switch level {
	case "2", "authNoPriv":
		return gosnmp.AuthNoPriv
	case "3", "authPriv":
		return gosnmp.AuthPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func parseSNMPv3AuthProtocol(protocol string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToLower(protocol) {
	case "2", "md5":
		return gosnmp.MD5
	case "3", "sha":
		return gosnmp.SHA
	case "4", "sha224":
		return gosnmp.SHA224
	case "5", "sha256":
		return gosnmp.SHA256
	case "6", "sha384":
		return gosnmp.SHA384
	case "7", "sha512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func parseSNMPv3PrivProtocol(protocol string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToLower(protocol) {
	case "2", "des":
		return gosnmp.DES
	case "3", "aes":
		return gosnmp.AES
	case "4", "aes192":
		return gosnmp.AES192
	case "5", "aes256":
		return gosnmp.AES256
	case "6", "aes192c":
		return gosnmp.AES192C
	case "7", "aes256c":
		return gosnmp.AES256C
	default:
		return gosnmp.NoPriv
	}
}

func connInfo(c gosnmp.Handler) string {
	info := fmt.Sprintf("target=%s port=%d version=%s", c.Target(), c.Port(), c.Version())
	if c.Version() == gosnmp.Version3 {
		info += fmt.Sprintf(" msg_flags=%d", c.MsgFlags())
	}
	return info
}
