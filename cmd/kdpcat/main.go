// Command kdpcat drives a single kdp.Conn from the terminal: lines typed on
// stdin go out reliably, and payloads delivered by the peer are printed to
// stdout. It exists to exercise the library end to end over a real UDP
// socket, the way a protocol's own reference client would.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"

	flag "github.com/ogier/pflag"

	"github.com/kore-net/kdp"
)

var (
	remoteHost      string
	remotePort      int
	localPort       int
	timeoutStr      string
	pingIntervalStr string
	bufferSize      int
	cacheCapacity   int
	unreliable      bool
)

func addOptions(f *flag.FlagSet) {
	f.StringVar(&remoteHost, "host", "127.0.0.1", "remote host to send to")
	f.IntVar(&remotePort, "port", 9000, "remote UDP port to send to")
	f.IntVar(&localPort, "listen", 9001, "local UDP port to bind")
	f.StringVar(&timeoutStr, "timeout", "30s", "idle timeout before the connection resets")
	f.StringVar(&pingIntervalStr, "ping-interval", "2s", "keep-alive ping interval")
	f.IntVar(&bufferSize, "buffer", 1500, "datagram buffer size in bytes")
	f.IntVar(&cacheCapacity, "cache", 64, "retransmit cache capacity in packets")
	f.BoolVar(&unreliable, "unreliable", false, "send stdin lines unreliably instead of reliably")
}

func main() {
	flags := flag.NewFlagSet("kdpcat", flag.ExitOnError)
	addOptions(flags)
	flags.Parse(os.Args[1:])

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Fatalf("kdpcat: -timeout: %s", err)
	}
	pingInterval, err := time.ParseDuration(pingIntervalStr)
	if err != nil {
		log.Fatalf("kdpcat: -ping-interval: %s", err)
	}

	cfg := kdp.Config{
		RemoteHost:    remoteHost,
		RemotePort:    remotePort,
		LocalPort:     localPort,
		Timeout:       timeout,
		PingInterval:  pingInterval,
		BufferSize:    bufferSize,
		CacheCapacity: cacheCapacity,
	}

	conn, err := kdp.NewConn(cfg)
	if err != nil {
		log.Fatalf("kdpcat: %s", err)
	}
	defer conn.Close()

	lines := make(chan string)
	go readLines(lines)

	out := make([]byte, cfg.BufferSize)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := conn.Send([]byte(line), !unreliable); err != nil {
				log.Printf("kdpcat: send: %s", err)
			}
		case <-ticker.C:
		}

		n, err := conn.PollReceive(out)
		if err != nil {
			log.Printf("kdpcat: receive: %s", err)
			continue
		}
		if n > 0 {
			fmt.Printf("< %s\n", out[:n])
		}
	}
}

func readLines(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}
