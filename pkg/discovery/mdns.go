package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/rs/zerolog"

	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty string means all interfaces.
	Interface string

	// TTL overrides the record TTL (default: zeroconf's).
	TTL time.Duration

	// Logger receives operational logs.
	Logger zerolog.Logger
}

// Advertiser registers device instances with zeroconf.
type Advertiser struct {
	config AdvertiserConfig

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by instance name
}

// NewAdvertiser creates an Advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}
}

// Advertise starts advertising info, replacing an existing advertisement
// of the same instance.
func (a *Advertiser) Advertise(info *DeviceInfo) error {
	if err := ValidateInstanceName(info.Instance); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if server, exists := a.servers[info.Instance]; exists {
		server.Shutdown()
		delete(a.servers, info.Instance)
	}

	port := info.Port
	if !transport.ValidPort(port) {
		port = transport.DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Instance,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodeTXT(info)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", info.Instance, err)
	}

	a.servers[info.Instance] = server
	a.config.Logger.Info().
		Str("instance", info.Instance).
		Str("service", ServiceType).
		Int("port", port).
		Msg("advertising device")
	return nil
}

// Update replaces the TXT records of an advertised instance.
func (a *Advertiser) Update(info *DeviceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[info.Instance]
	if !exists {
		return ErrNotFound
	}
	server.SetText(TXTRecordsToStrings(EncodeTXT(info)))
	return nil
}

// Stop stops advertising one instance.
func (a *Advertiser) Stop(instance string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[instance]
	if !exists {
		return ErrNotFound
	}
	server.Shutdown()
	delete(a.servers, instance)
	return nil
}

// StopAll stops all advertisements.
func (a *Advertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for instance, server := range a.servers {
		server.Shutdown()
		delete(a.servers, instance)
	}
}

// Advertise is a shortcut that registers one instance on all interfaces.
// Call StopAll on the returned Advertiser to withdraw it.
func Advertise(instance string, port int, txt TXTRecordMap) (*Advertiser, error) {
	info, err := DecodeTXT(withVersion(txt))
	if err != nil {
		return nil, err
	}
	info.Instance = instance
	info.Port = port

	a := NewAdvertiser(AdvertiserConfig{Logger: zerolog.Nop()})
	if err := a.Advertise(info); err != nil {
		return nil, err
	}
	return a, nil
}

func withVersion(txt TXTRecordMap) TXTRecordMap {
	out := make(TXTRecordMap, len(txt)+1)
	for k, v := range txt {
		out[k] = v
	}
	if out[TXTKeyVersion] == "" {
		out[TXTKeyVersion] = ProtocolVersion
	}
	return out
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string
}

// Browser finds device instances with zeroconf.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a Browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse streams devices until ctx is done. Services are aggregated by
// instance name: addresses seen on several interfaces are merged and a
// service is emitted once, when first seen.
func (b *Browser) Browse(ctx context.Context) (<-chan *Service, error) {
	out := make(chan *Service)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		services := make(map[string]*Service)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if svc == nil {
					continue
				}
				if existing, found := services[svc.Instance]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.Instance] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.clientOptions()...)
	}()

	return out, nil
}

// Resolve browses until instance appears and returns its endpoint. Without
// a deadline on ctx it gives up after ResolveTimeout.
func (b *Browser) Resolve(ctx context.Context, instance string) (transport.Endpoint, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ResolveTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	services, err := b.Browse(ctx)
	if err != nil {
		return transport.Endpoint{}, err
	}
	for svc := range services {
		if svc.Instance != instance {
			continue
		}
		return svc.Endpoint()
	}
	return transport.Endpoint{}, fmt.Errorf("%w: %s", ErrNotFound, instance)
}

// Resolve looks up instance on all interfaces.
func Resolve(ctx context.Context, instance string) (transport.Endpoint, error) {
	return NewBrowser(BrowserConfig{}).Resolve(ctx, instance)
}

// Endpoint returns the first address of s as a transport endpoint,
// preferring IPv4.
func (s *Service) Endpoint() (transport.Endpoint, error) {
	if len(s.Addresses) == 0 {
		return transport.Endpoint{}, fmt.Errorf("%w: %s", ErrNoAddress, s.Instance)
	}
	ep, _ := transport.NewEndpoint(s.Addresses[0], s.Port)
	return ep, nil
}

func (b *Browser) clientOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	return opts
}

// interfaces returns the named interface, or nil for all interfaces.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// entryToService converts a zeroconf entry to a Service. Entries without
// a valid version record are not hostlink devices.
func entryToService(entry *zeroconf.ServiceEntry) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	info.Instance = entry.Instance
	info.Port = entry.Port

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Service{
		DeviceInfo: *info,
		Host:       entry.HostName,
		Addresses:  addrs,
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
