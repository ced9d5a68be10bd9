// Package bluez finds the earbuds through BlueZ on the system D-Bus.
package bluez

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	busName       = "org.bluez"
	adapterIface  = "org.bluez.Adapter1"
	deviceIface   = "org.bluez.Device1"
	propsIface    = "org.freedesktop.DBus.Properties"
	objectManager = "org.freedesktop.DBus.ObjectManager"

	DefaultAdapter = "hci0"
)

var ErrNoDevice = errors.New("no matching bluetooth device")

// Device is one BlueZ device object.
type Device struct {
	Path      dbus.ObjectPath
	Address   string
	Alias     string
	Paired    bool
	Connected bool
}

func adapterPath(adapter string) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + adapter)
}

// deviceObjectPath converts "AA:BB:CC:DD:EE:FF" to
// "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF".
func deviceObjectPath(adapter, addr string) dbus.ObjectPath {
	escaped := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	return dbus.ObjectPath(string(adapterPath(adapter)) + "/dev_" + escaped)
}

// macFromPath extracts the address from a device object path under adapter.
func macFromPath(adapter string, path dbus.ObjectPath) string {
	s := string(path)
	prefix := string(adapterPath(adapter)) + "/dev_"
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	return strings.ReplaceAll(s[len(prefix):], "_", ":")
}

// Client wraps a system bus connection for BlueZ queries.
type Client struct {
	conn    *dbus.Conn
	adapter string
}

// Connect opens the system bus and checks that BlueZ is running.
func Connect(ctx context.Context, adapter string) (*Client, error) {
	if adapter == "" {
		adapter = DefaultAdapter
	}
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("list bus names: %w", err)
	}
	found := false
	for _, n := range names {
		if n == busName {
			found = true
			break
		}
	}
	if !found {
		conn.Close()
		return nil, errors.New("org.bluez not found on system bus; is bluetooth.service running?")
	}
	return &Client{conn: conn, adapter: adapter}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) getBool(ctx context.Context, path dbus.ObjectPath, iface, prop string) (bool, error) {
	obj := c.conn.Object(busName, path)
	var v dbus.Variant
	if err := obj.CallWithContext(ctx, propsIface+".Get", 0, iface, prop).Store(&v); err != nil {
		return false, fmt.Errorf("get %s.%s: %w", iface, prop, err)
	}
	val, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %s is not bool", prop)
	}
	return val, nil
}

func (c *Client) AdapterPowered(ctx context.Context) (bool, error) {
	return c.getBool(ctx, adapterPath(c.adapter), adapterIface, "Powered")
}

func (c *Client) DeviceConnected(ctx context.Context, addr string) (bool, error) {
	return c.getBool(ctx, deviceObjectPath(c.adapter, addr), deviceIface, "Connected")
}

// Devices lists the devices known to the adapter, sorted by address.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	call := c.conn.Object(busName, "/").CallWithContext(ctx, objectManager+".GetManagedObjects", 0)
	if err := call.Store(&objects); err != nil {
		return nil, fmt.Errorf("list bluez objects: %w", err)
	}
	return devicesFromObjects(c.adapter, objects), nil
}

func devicesFromObjects(adapter string, objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) []Device {
	var out []Device
	for path, ifaces := range objects {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		addr := macFromPath(adapter, path)
		if addr == "" {
			continue
		}
		d := Device{Path: path, Address: addr}
		if v, ok := props["Address"].Value().(string); ok && v != "" {
			d.Address = v
		}
		d.Alias, _ = props["Alias"].Value().(string)
		d.Paired, _ = props["Paired"].Value().(bool)
		d.Connected, _ = props["Connected"].Value().(bool)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// pickDevice returns the device matching address, or the first connected
// device whose alias starts with namePrefix when no address is configured.
func pickDevice(devices []Device, address, namePrefix string) (Device, error) {
	if address != "" {
		for _, d := range devices {
			if strings.EqualFold(d.Address, address) {
				return d, nil
			}
		}
		return Device{}, fmt.Errorf("%w: %s is not known to bluez", ErrNoDevice, address)
	}
	for _, d := range devices {
		if d.Connected && strings.HasPrefix(d.Alias, namePrefix) {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: no connected device named %q*", ErrNoDevice, namePrefix)
}

// Resolver turns the configured address or name prefix into the address of
// a connected device.
type Resolver struct {
	Adapter    string
	Address    string
	NamePrefix string
}

func (r Resolver) Resolve(ctx context.Context) (string, error) {
	client, err := Connect(ctx, r.Adapter)
	if err != nil {
		return "", err
	}
	defer client.Close()

	powered, err := client.AdapterPowered(ctx)
	if err != nil {
		return "", err
	}
	if !powered {
		return "", fmt.Errorf("bluetooth adapter %s is powered off", client.adapter)
	}

	devices, err := client.Devices(ctx)
	if err != nil {
		return "", err
	}
	d, err := pickDevice(devices, r.Address, r.NamePrefix)
	if err != nil {
		return "", err
	}
	if !d.Connected {
		return "", fmt.Errorf("device %s (%s) is not connected", d.Address, d.Alias)
	}
	return d.Address, nil
}
