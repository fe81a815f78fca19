package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

func main() {
	fmt.Println(ColorCyan + "[StructureVision] Native Builder" + ColorReset)

	start := time.Now()

	setupEnvironment()

	// Servidor usa go-sqlite3 (CGO); cliente usa raylib (CGO + janela)
	if err := buildComponent("SERVIDOR (CGO)", "servidor", "servidor/server"+exeSuffix(), true, staticFlags()); err != nil {
		fatal(err)
	}
	if err := buildComponent("CLIENTE (CGO + GUI)", "cliente", "cliente/client"+exeSuffix(), true, staticFlags()+guiFlags()); err != nil {
		fatal(err)
	}
	if err := buildComponent("LAUNCHER (Pure Go)", "launcher", "StructureVision"+exeSuffix(), false, "-s -w"); err != nil {
		fatal(err)
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: Execute o 'StructureVision" + exeSuffix() + "' para abrir servidor e cliente." + ColorReset)
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func staticFlags() string {
	if runtime.GOOS == "windows" {
		return "-extldflags=-static -s -w"
	}
	return "-s -w"
}

func guiFlags() string {
	if runtime.GOOS == "windows" {
		return " -H=windowsgui"
	}
	return ""
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0/3] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func buildComponent(name, dir, output string, useCgo bool, ldflags string) error {
	fmt.Printf(ColorYellow+"\n[+] Compilando %s..."+ColorReset+"\n", name)

	cgoValue := "0"
	if useCgo {
		cgoValue = "1"
	}

	cmd := exec.Command("go", "build", "-ldflags", ldflags, "-o", output, "./"+dir)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", name, output)
	return nil
}

func fatal(err error) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	os.Exit(1)
}
