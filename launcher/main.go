package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// waitForPort espera o servidor aceitar conexões TCP.
func waitForPort(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("servidor não respondeu em %s após %v", addr, timeout)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "Endereço do servidor de estruturas")
	flag.Parse()

	fmt.Println("[StructureVision] Launcher")

	fmt.Println("[1/2] Iniciando Servidor...")
	serverPath, err := filepath.Abs(filepath.Join("servidor", exe("server")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do servidor: %v", err)
	}
	serverCmd := exec.Command(serverPath, "-listen", *addr)
	serverCmd.Dir = "servidor"
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
	defer func() {
		if serverCmd.Process != nil {
			_ = serverCmd.Process.Kill()
		}
	}()

	if err := waitForPort(*addr, 15*time.Second); err != nil {
		log.Printf("ERRO: %v", err)
		return
	}

	fmt.Println("[2/2] Abrindo Cliente...")
	absClientPath, err := filepath.Abs(filepath.Join("cliente", exe("client")))
	if err != nil {
		log.Printf("Erro ao resolver caminho do cliente: %v", err)
		return
	}

	clientCmd := exec.Command(absClientPath, "-server", "ws://"+*addr+"/ws")
	clientCmd.Dir = "cliente" // Diretório de trabalho para carregar assets
	if err := clientCmd.Run(); err != nil {
		fmt.Printf("ERRO: cliente terminou com falha (%s): %v\n", absClientPath, err)
	}

	fmt.Println("Cliente fechado. Encerrando servidor...")
}
