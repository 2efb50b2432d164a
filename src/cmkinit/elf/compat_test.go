package elf

import (
	stdelf "debug/elf"
	"testing"
)

func TestCompatible_SameOSABI(t *testing.T) {
	a := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_LINUX}}
	b := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_LINUX}}
	if !Compatible(a, b) {
		t.Error("expected identical OSABI to be compatible")
	}
}

func TestCompatible_AliasedOSABI(t *testing.T) {
	a := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_NONE}}
	b := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_LINUX}}
	if !Compatible(a, b) {
		t.Error("expected NONE and LINUX OSABI to be compatible")
	}
}

func TestCompatible_MismatchedClass(t *testing.T) {
	a := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS32, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_386, OSABI: stdelf.ELFOSABI_LINUX}}
	b := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_LINUX}}
	if Compatible(a, b) {
		t.Error("expected mismatched class to be incompatible")
	}
}

func TestCompatible_MismatchedMachine(t *testing.T) {
	a := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_AARCH64, OSABI: stdelf.ELFOSABI_LINUX}}
	b := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64, Data: stdelf.ELFDATA2LSB, Machine: stdelf.EM_X86_64, OSABI: stdelf.ELFOSABI_LINUX}}
	if Compatible(a, b) {
		t.Error("expected mismatched machine to be incompatible")
	}
}

func TestClassBits(t *testing.T) {
	f64 := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS64}}
	if ClassBits(f64) != 64 {
		t.Errorf("expected 64, got %d", ClassBits(f64))
	}
	f32 := &stdelf.File{FileHeader: stdelf.FileHeader{Class: stdelf.ELFCLASS32}}
	if ClassBits(f32) != 32 {
		t.Errorf("expected 32, got %d", ClassBits(f32))
	}
}
