// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"

	"code.hybscloud.com/dlpi"
	"code.hybscloud.com/dlpi/metrics"
	"code.hybscloud.com/dlpi/simnet"
	"code.hybscloud.com/kont"
	"go.uber.org/zap"
)

// provider returns the provider named by cfg. simnet gets a fabric with
// the link and its peer.
func provider(cfg *Config, log *zap.Logger) (dlpi.Provider, error) {
	if cfg.Provider == providerSystem {
		return dlpi.System(), nil
	}
	f := simnet.New(simnet.WithLogger(log))
	for _, name := range []string{cfg.Link, cfg.Peer} {
		if _, err := f.AddLink(name, nil); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// openBound opens name, binds it to cfg.SAP and tracks it in col.
func openBound(name string, p dlpi.Provider, cfg *Config, col *metrics.Collector, log *zap.Logger) (*dlpi.Session, error) {
	s, err := dlpi.Open(name, 0, dlpi.WithProvider(p), dlpi.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := s.Bind(cfg.SAP); err != nil {
		s.Close()
		return nil, fmt.Errorf("bind %s: %w", name, err)
	}
	col.Track(s.Ref)
	return s, nil
}

func recvCmd(ctx context.Context, cfg *Config, col *metrics.Collector, log *zap.Logger, out io.Writer) error {
	p, err := provider(cfg, log)
	if err != nil {
		return err
	}
	s, err := openBound(cfg.Link, p, cfg, col, log)
	if err != nil {
		return err
	}
	defer s.Close()
	group, _ := cfg.groupAddr()
	if err := s.EnableMulticast(group); err != nil {
		return fmt.Errorf("enable multicast %s: %w", group, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	src := make([]byte, dlpi.PhysAddrMax)
	msg := make([]byte, 4096)
	var info dlpi.RecvInfo
	got, err := s.RecvReady(ctx, src, msg, &info)
	if err != nil {
		return fmt.Errorf("recv %s: %w", cfg.Link, err)
	}
	dump(out, src[:got.AddrLen], msg[:got.MsgLen], &info)
	return nil
}

func sendCmd(cfg *Config, col *metrics.Collector, log *zap.Logger) error {
	p, err := provider(cfg, log)
	if err != nil {
		return err
	}
	s, err := openBound(cfg.Link, p, cfg, col, log)
	if err != nil {
		return err
	}
	defer s.Close()
	group, _ := cfg.groupAddr()
	if err := s.Send(group, []byte(cfg.Message), nil); err != nil {
		return fmt.Errorf("send %s: %w", cfg.Link, err)
	}
	log.Info("frame sent", zap.String("link", cfg.Link), zap.Stringer("dst", group), zap.Int("len", len(cfg.Message)))
	return nil
}

// demoCmd sends the message from link to its peer over an in-memory
// fabric and dumps what the peer receives.
func demoCmd(ctx context.Context, cfg *Config, col *metrics.Collector, log *zap.Logger, out io.Writer) error {
	demo := *cfg
	demo.Provider = providerSimnet
	p, err := provider(&demo, log)
	if err != nil {
		return err
	}
	tx, err := openBound(demo.Link, p, &demo, col, log)
	if err != nil {
		return err
	}
	defer tx.Close()
	rx, err := openBound(demo.Peer, p, &demo, col, log)
	if err != nil {
		return err
	}
	defer rx.Close()
	group, _ := demo.groupAddr()
	if err := rx.EnableMulticast(group); err != nil {
		return err
	}

	src := make([]byte, dlpi.PhysAddrMax)
	msg := make([]byte, 4096)
	sender := dlpi.SendThen(group, []byte(demo.Message), kont.Pure(struct{}{}))
	receiver := dlpi.RecvBind(src, msg, func(got dlpi.Received) kont.Eff[dlpi.Received] {
		return kont.Pure(got)
	})

	ctx, cancel := context.WithTimeout(ctx, demo.Timeout)
	defer cancel()
	_, got, err := dlpi.Run(ctx, tx.Ref, sender, rx.Ref, receiver)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	dump(out, src[:got.AddrLen], msg[:got.MsgLen], nil)
	return nil
}

func dump(out io.Writer, src, msg []byte, info *dlpi.RecvInfo) {
	fmt.Fprintf(out, "from %s, %d bytes", net.HardwareAddr(src), len(msg))
	if info != nil {
		fmt.Fprintf(out, " to %s (%s)", info.Dest(), info.DestAddrType)
		if info.Truncated(len(msg)) {
			fmt.Fprintf(out, ", truncated from %d", info.TotalLen)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, hex.Dump(msg))
}
